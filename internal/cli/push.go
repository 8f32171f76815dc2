package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ferry/internal/cli/ui/styles"
	"ferry/internal/config"
	"ferry/internal/engine"
	"ferry/pkg/validation"
)

// newPushCmd creates the push command.
func newPushCmd() *cobra.Command {
	var (
		username    string
		passwordEnv string
	)

	cmd := &cobra.Command{
		Use:   "push <ref>",
		Short: "Push a tagged image to its registry",
		Long: `Push a tagged image from the selected engine to its registry.

Credentials default to the context's registry settings; flags override
them. The password is never taken as a flag value, only as the name of
an environment variable.

Examples:
  ferry push registry.example.com/myorg/myapp:v1.2.0
  ferry push registry.example.com/myorg/myapp:v1.2.0 --username ci --password-env REG_PASS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd.Context(), args[0], username, passwordEnv)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Registry username (overrides the context)")
	cmd.Flags().StringVar(&passwordEnv, "password-env", "", "Env var holding the registry password (overrides the context)")

	return cmd
}

func runPush(ctx context.Context, ref, username, passwordEnv string) error {
	if _, err := validation.ParseImageRef(ref); err != nil {
		return err
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

	fmt.Printf("Pushing %s via %s\n", styles.Theme.Bold.Render(ref), styles.Theme.Highlight.Render(name))

	if err := eng.Push(ctx, ref, engine.PushOptions{
		Username: user,
		Password: password,
	}); err != nil {
		return err
	}

	fmt.Println(styles.RenderSuccess("Push complete: " + ref))
	return nil
}

// resolveRegistryCredentials picks push credentials.
// Precedence: flags > context settings. The password always comes from an
// environment variable.
func resolveRegistryCredentials(cc config.Context, username, passwordEnv string) (string, string) {
	user := username
	env := passwordEnv

	if user == "" {
		user = cc.RegistryUser
	}
	if env == "" {
		env = cc.RegistryPasswordEnv
	}

	if user == "" {
		return "", ""
	}

	password := ""
	if env != "" {
		password = os.Getenv(env)
	}

	return user, password
}
