package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"ferry/internal/cli/ui/components"
	"ferry/internal/cli/ui/styles"
	"ferry/internal/config"
)

// newContextCmd creates the context command group.
func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage saved engine contexts",
		Long: `Manage saved engine contexts.

A context names a remote Docker engine endpoint secured by mutual TLS,
plus the registry credentials used when pushing through it.

Contexts are stored in ~/.config/ferry/contexts.yaml`,
	}

	cmd.AddCommand(newContextCreateCmd())
	cmd.AddCommand(newContextUseCmd())
	cmd.AddCommand(newContextListCmd())
	cmd.AddCommand(newContextShowCmd())
	cmd.AddCommand(newContextRemoveCmd())

	return cmd
}

// newContextCreateCmd creates the context create command.
func newContextCreateCmd() *cobra.Command {
	var (
		host                string
		ca                  string
		cert                string
		key                 string
		registryUser        string
		registryPasswordEnv string
		use                 bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a remote engine endpoint",
		Long: `Register a named remote engine endpoint.

tcp hosts talk to the daemon over the network and require the full
mutual TLS triple (--ca, --cert, --key). Each file must be readable when
the context is created.

Examples:
  ferry context create prod --host tcp://build-01.internal:2376 \
    --ca ~/.ferry/ca.pem --cert ~/.ferry/cert.pem --key ~/.ferry/key.pem
  ferry context create local --host unix:///var/run/docker.sock
  ferry context create prod --host tcp://build-01:2376 --ca ca.pem \
    --cert cert.pem --key key.pem --registry-user ci --registry-password-env REG_PASS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContextCreate(args[0], config.Context{
				Host:                host,
				CA:                  ca,
				Cert:                cert,
				Key:                 key,
				RegistryUser:        registryUser,
				RegistryPasswordEnv: registryPasswordEnv,
			}, use)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Engine endpoint URL (tcp:// or unix://)")
	cmd.Flags().StringVar(&ca, "ca", "", "CA certificate file for mutual TLS")
	cmd.Flags().StringVar(&cert, "cert", "", "Client certificate file for mutual TLS")
	cmd.Flags().StringVar(&key, "key", "", "Client key file for mutual TLS")
	cmd.Flags().StringVar(&registryUser, "registry-user", "", "Registry username for pushes through this context")
	cmd.Flags().StringVar(&registryPasswordEnv, "registry-password-env", "", "Env var holding the registry password")
	cmd.Flags().BoolVar(&use, "use", false, "Select the context after creating it")

	_ = cmd.MarkFlagRequired("host")

	return cmd
}

func runContextCreate(name string, c config.Context, use bool) error {
	store, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := store.Add(name, c); err != nil {
		return err
	}

	if use {
		if err := store.SetActive(name); err != nil {
			return err
		}
	}

	if err := store.Save(); err != nil {
		return err
	}

	fmt.Println(styles.RenderSuccess(fmt.Sprintf("Context %q created", name)))
	if use {
		fmt.Println(styles.RenderInfo(fmt.Sprintf("Context %q is now active", name)))
	}

	return nil
}

// newContextUseCmd creates the context use command.
func newContextUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Select the active context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if err := store.SetActive(args[0]); err != nil {
				return err
			}

			if err := store.Save(); err != nil {
				return err
			}

			fmt.Println(styles.RenderSuccess(fmt.Sprintf("Context %q is now active", args[0])))
			return nil
		},
	}
}

// newContextListCmd creates the context ls command.
func newContextListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List saved contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if len(store.Contexts) == 0 {
				fmt.Println(styles.Theme.Muted.Render("No contexts configured"))
				fmt.Println()
				fmt.Println("Create one with:")
				fmt.Println(styles.Theme.Bold.Render("  ferry context create <name> --host tcp://HOST:2376 --ca CA --cert CERT --key KEY"))
				return nil
			}

			rows := make([][]string, 0, len(store.Contexts))
			for _, name := range store.Names() {
				c := store.Contexts[name]

				tls := styles.Theme.Muted.Render("no")
				if c.TLS() {
					tls = styles.Theme.Success.Render("mutual")
				}

				active := ""
				if name == store.Active {
					active = styles.Theme.Success.Render(styles.IconActive + " active")
				}

				rows = append(rows, []string{name, c.Host, tls, active})
			}

			table := components.NewTable(
				components.WithColumns([]components.TableColumn{
					{Title: "Name", Width: 15},
					{Title: "Host", Width: 40},
					{Title: "TLS", Width: 8},
					{Title: "Status", Width: 10},
				}),
				components.WithRows(rows),
			)

			fmt.Println(styles.Theme.Title.Render("Saved Contexts"))
			fmt.Println(table.Render())

			return nil
		},
	}
}

// newContextShowCmd creates the context show command.
func newContextShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show a context's settings",
		Long:  "Show a context's settings. Without a name, shows the resolved context (flag > FERRY_CONTEXT > active).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(configPath)
			if err != nil {
				return err
			}

			var name string
			var c config.Context
			if len(args) == 1 {
				name = args[0]
				c, err = store.Get(name)
			} else {
				name, c, err = store.Resolve(contextFlag)
			}
			if err != nil {
				return err
			}

			fmt.Println(styles.Theme.Title.Render("Context " + name))
			fmt.Printf("  Host: %s\n", styles.Theme.Bold.Render(c.Host))
			if c.TLS() {
				fmt.Printf("  CA:   %s\n", c.CA)
				fmt.Printf("  Cert: %s\n", c.Cert)
				fmt.Printf("  Key:  %s\n", c.Key)
			}
			if c.RegistryUser != "" {
				fmt.Printf("  Registry user: %s\n", c.RegistryUser)
			}
			if c.RegistryPasswordEnv != "" {
				fmt.Printf("  Registry password: %s\n", styles.Theme.Muted.Render("$"+c.RegistryPasswordEnv))
			}
			if name == store.Active {
				fmt.Println(styles.RenderSuccess("Active"))
			}

			return nil
		},
	}
}

// newContextRemoveCmd creates the context rm command.
func newContextRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a saved context",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if _, err := store.Get(name); err != nil {
				return err
			}

			if !force {
				var proceed bool
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Remove context %q?", name),
					Default: false,
				}
				if err := survey.AskOne(prompt, &proceed); err != nil {
					return fmt.Errorf("prompt failed: %w", err)
				}
				if !proceed {
					fmt.Println(styles.Theme.Muted.Render("Cancelled"))
					return nil
				}
			}

			if err := store.Remove(name); err != nil {
				return err
			}

			if err := store.Save(); err != nil {
				return err
			}

			fmt.Println(styles.RenderSuccess(fmt.Sprintf("Context %q removed", name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}
