package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ferry/internal/cli/ui/styles"
	"ferry/internal/config"
	"ferry/internal/engine"
	"ferry/pkg/validation"
)

// newBuildCmd creates the build command.
func newBuildCmd() *cobra.Command {
	var (
		tag          string
		dockerfile   string
		platform     string
		noCache      bool
		buildArgs    []string
		buildArgFile string
		labels       []string
	)

	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Build an image on the selected engine",
		Long: `Build an image from a local build context directory against the
selected engine, tagging it with a fully qualified reference.

The build context is tarred and uploaded to the engine; .dockerignore in
the context directory is honored.

Examples:
  ferry build -t registry.example.com/myorg/myapp:v1.2.0 .
  ferry build -t registry.example.com/myorg/myapp:v1.2.0 --no-cache
  ferry build -t registry.example.com/myorg/myapp:dev --build-arg CGO_ENABLED=0 ./svc
  ferry build -t registry.example.com/myorg/myapp:dev --build-arg-file build.env`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextDir := "."
			if len(args) == 1 {
				contextDir = args[0]
			}
			return runBuild(cmd.Context(), tag, contextDir, dockerfile, platform, noCache, buildArgs, buildArgFile, labels)
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Image reference to tag the build with")
	cmd.Flags().StringVarP(&dockerfile, "file", "f", "", "Dockerfile path relative to the build context (default: Dockerfile)")
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform, e.g. linux/amd64")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Build without the layer cache")
	cmd.Flags().StringArrayVar(&buildArgs, "build-arg", nil, "Build args as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&buildArgFile, "build-arg-file", "", "File of KEY=VALUE build args (dotenv format)")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Image labels as KEY=VALUE (repeatable)")

	return cmd
}

func runBuild(ctx context.Context, tag, contextDir, dockerfile, platform string, noCache bool, buildArgs []string, buildArgFile string, labels []string) error {
	ref, err := resolveBuildRef(tag)
	if err != nil {
		return err
	}

	args, err := collectBuildArgs(buildArgs, buildArgFile)
	if err != nil {
		return err
	}

	labelMap, err := parseKeyValues(labels)
	if err != nil {
		return fmt.Errorf("invalid --label: %w", err)
	}

	store, err := config.Load(configPath)
	if err != nil {
		return err
	}

	name, cc, err := store.Resolve(contextFlag)
	if err != nil {
		return err
	}

	eng, err := engine.Connect(ctx, cc)
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Printf("Building %s on %s\n", styles.Theme.Bold.Render(ref), styles.Theme.Highlight.Render(name))

	if err := eng.Build(ctx, engine.BuildOptions{
		ContextDir: contextDir,
		Dockerfile: dockerfile,
		Tags:       []string{ref},
		BuildArgs:  args,
		Labels:     labelMap,
		Platform:   platform,
		NoCache:    noCache,
	}); err != nil {
		return err
	}

	fmt.Println(styles.RenderSuccess("Build complete: " + ref))
	return nil
}

// resolveBuildRef validates the requested tag, or generates a throwaway
// local reference when none was given.
func resolveBuildRef(tag string) (string, error) {
	if tag == "" {
		ref := "ferry-build:" + uuid.NewString()[0:7]
		fmt.Println(styles.RenderWarning("No --tag given, using " + ref))
		return ref, nil
	}

	parsed, err := validation.ParseImageRef(tag)
	if err != nil {
		return "", err
	}
	if err := validation.ValidateRepositoryName(parsed.Path); err != nil {
		return "", err
	}
	if parsed.Tag != "" {
		if err := validation.ValidateTag(parsed.Tag); err != nil {
			return "", err
		}
	}

	return tag, nil
}

// collectBuildArgs merges --build-arg-file entries with --build-arg flags
// into the API's nullable map form. Flags win over file entries.
func collectBuildArgs(flags []string, file string) (map[string]*string, error) {
	args := make(map[string]*string)

	if file != "" {
		fileArgs, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read build arg file: %w", err)
		}
		for k, v := range fileArgs {
			value := v
			args[k] = &value
		}
	}

	for _, arg := range flags {
		if err := validation.ValidateBuildArg(arg); err != nil {
			return nil, err
		}
		key, value, _ := strings.Cut(arg, "=")
		v := value
		args[key] = &v
	}

	if len(args) == 0 {
		return nil, nil
	}

	return args, nil
}

// parseKeyValues parses repeated KEY=VALUE flags into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%q is not KEY=VALUE", pair)
		}
		m[key] = value
	}

	return m, nil
}
