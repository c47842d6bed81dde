package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/daybook/internal/config"
)

func newConfigCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(rt.configPath, force); err != nil {
				return err
			}
			rt.printf("wrote %s\n", rt.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.loadConfig(); err != nil {
				return err
			}
			out, err := yaml.Marshal(rt.cfg)
			if err != nil {
				return err
			}
			rt.printf("%s", out)
			return nil
		},
	}

	cmd.AddCommand(initCmd, show)
	return cmd
}
