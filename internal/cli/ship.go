package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ferry/internal/cli/ui/styles"
	"ferry/internal/config"
	"ferry/internal/engine"
	"ferry/internal/pipeline"
	"ferry/pkg/validation"
)

// newShipCmd creates the ship command.
func newShipCmd() *cobra.Command {
	var (
		dockerfile   string
		platform     string
		noCache      bool
		buildArgs    []string
		buildArgFile string
		labels       []string
		username     string
		passwordEnv  string
	)

	cmd := &cobra.Command{
		Use:   "ship <ref> [path]",
		Short: "Build an image and push it, in one fixed sequence",
		Long: `Build an image on the selected engine and push it to its registry.

The sequence is fixed: verify the engine, build, push. Each step blocks
until it finishes, and the first failure aborts the rest. The build tag
and the push tag are always the same reference.

Examples:
  ferry ship registry.example.com/myorg/myapp:v1.2.0 .
  ferry ship registry.example.com/myorg/myapp:v1.2.0 --no-cache ./svc`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextDir := "."
			if len(args) == 2 {
				contextDir = args[1]
			}
			return runShip(cmd.Context(), args[0], contextDir, dockerfile, platform, noCache, buildArgs, buildArgFile, labels, username, passwordEnv)
		},
	}

	cmd.Flags().StringVarP(&dockerfile, "file", "f", "", "Dockerfile path relative to the build context (default: Dockerfile)")
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform, e.g. linux/amd64")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Build without the layer cache")
	cmd.Flags().StringArrayVar(&buildArgs, "build-arg", nil, "Build args as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&buildArgFile, "build-arg-file", "", "File of KEY=VALUE build args (dotenv format)")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Image labels as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&username, "username", "", "Registry username (overrides the context)")
	cmd.Flags().StringVar(&passwordEnv, "password-env", "", "Env var holding the registry password (overrides the context)")

	return cmd
}

func runShip(ctx context.Context, ref, contextDir, dockerfile, platform string, noCache bool, buildArgs []string, buildArgFile string, labels []string, username, passwordEnv string) error {
	parsed, err := validation.ParseImageRef(ref)
	if err != nil {
		return err
	}
	if err := validation.ValidateRepositoryName(parsed.Path); err != nil {
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

	user, password := resolveRegistryCredentials(cc, username, passwordEnv)

	eng, err := engine.Connect(ctx, cc)
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Printf("Shipping %s via %s\n", styles.Theme.Bold.Render(ref), styles.Theme.Highlight.Render(name))

	if err := pipeline.Ship(ctx, eng, pipeline.ShipOptions{
		Ref: ref,
		Build: engine.BuildOptions{
			ContextDir: contextDir,
			Dockerfile: dockerfile,
			BuildArgs:  args,
			Labels:     labelMap,
			Platform:   platform,
			NoCache:    noCache,
		},
		Push: engine.PushOptions{
			Username: user,
			Password: password,
		},
	}); err != nil {
		return err
	}

	fmt.Println(styles.RenderSuccess("Shipped " + ref))
	return nil
}
