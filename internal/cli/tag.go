package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ferry/internal/cli/ui/styles"
	"ferry/internal/config"
	"ferry/internal/engine"
	"ferry/pkg/validation"
)

// newTagCmd creates the tag command.
func newTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <source> <target>",
		Short: "Apply an additional reference to an engine image",
		Long: `Apply an additional reference to an image already present on the
selected engine.

Example:
  ferry tag myapp:dev registry.example.com/myorg/myapp:v1.2.0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]

			if _, err := validation.ParseImageRef(source); err != nil {
				return err
			}
			if _, err := validation.ParseImageRef(target); err != nil {
				return err
			}

			store, err := config.Load(configPath)
			if err != nil {
				return err
			}

			_, cc, err := store.Resolve(contextFlag)
			if err != nil {
				return err
			}

			eng, err := engine.Connect(cmd.Context(), cc)
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.Tag(cmd.Context(), source, target); err != nil {
				return err
			}

			fmt.Println(styles.RenderSuccess(fmt.Sprintf("Tagged %s as %s", source, target)))
			return nil
		},
	}
}
