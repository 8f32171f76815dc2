package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ferry/internal/cli/ui/components"
	"ferry/internal/cli/ui/styles"
	"ferry/internal/config"
	"ferry/internal/registryclient"
)

// newTagsCmd creates the tags command.
func newTagsCmd() *cobra.Command {
	var (
		username    string
		passwordEnv string
		caFile      string
		digest      bool
	)

	cmd := &cobra.Command{
		Use:   "tags <repository>",
		Short: "List a repository's tags straight from the registry",
		Long: `List a repository's tags straight from the registry, without going
through an engine. The repository must be fully qualified.

Examples:
  ferry tags registry.example.com/myorg/myapp
  ferry tags registry.example.com/myorg/myapp --digest
  ferry tags registry.example.com/myorg/myapp --username ci --password-env REG_PASS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := args[0]

			store, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Context selection is optional here; when one resolves,
			// its registry credentials and CA are the defaults.
			user, password := username, ""
			ca := caFile
			if _, cc, rerr := store.Resolve(contextFlag); rerr == nil {
				user, password = resolveRegistryCredentials(cc, username, passwordEnv)
				if ca == "" {
					ca = cc.CA
				}
			} else if passwordEnv != "" {
				user, password = resolveRegistryCredentials(config.Context{}, username, passwordEnv)
			}

			reg, err := registryclient.New(registryclient.Options{
				Username: user,
				Password: password,
				CAFile:   ca,
			})
			if err != nil {
				return err
			}

			tags, err := reg.Tags(cmd.Context(), repository)
			if err != nil {
				return err
			}

			if len(tags) == 0 {
				fmt.Println(styles.Theme.Muted.Render("No tags found for " + repository))
				return nil
			}

			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				row := []string{tag}
				if digest {
					d, derr := reg.Digest(cmd.Context(), repository+":"+tag)
					if derr != nil {
						d = styles.Theme.Muted.Render("unresolved")
					}
					row = append(row, d)
				}
				rows = append(rows, row)
			}

			columns := []components.TableColumn{{Title: "Tag", Width: 25}}
			if digest {
				columns = append(columns, components.TableColumn{Title: "Digest", Width: 50})
			}

			table := components.NewTable(
				components.WithColumns(columns),
				components.WithRows(rows),
			)

			fmt.Println(styles.Theme.Title.Render("Tags for " + repository))
			fmt.Println(table.Render())

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Registry username (overrides the context)")
	cmd.Flags().StringVar(&passwordEnv, "password-env", "", "Env var holding the registry password (overrides the context)")
	cmd.Flags().StringVar(&caFile, "ca", "", "CA certificate file for the registry (defaults to the context's CA)")
	cmd.Flags().BoolVar(&digest, "digest", false, "Resolve each tag's manifest digest")

	return cmd
}
