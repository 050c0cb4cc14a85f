package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mt5crs/riskcore/config"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	var initPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if initPath != "" {
				if err := config.Default().SaveToFile(initPath); err != nil {
					return err
				}
				fmt.Printf("wrote default config to %s\n", initPath)
				return nil
			}

			cfg, err := loadConfig(rc)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&initPath, "init", "", "Write a default config file to this path and exit")
	return cmd
}
