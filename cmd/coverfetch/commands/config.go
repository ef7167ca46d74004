package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"coverfetch/internal/config"
	"coverfetch/internal/shared"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialize the configuration file.",
	}

	showCmd := &cobra.Command{
		Use:   "show [config_file]",
		Short: "Print the effective configuration.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetDefaultConfig()
			if len(args) == 1 {
				if err := config.LoadConfig(args[0], cfg); err != nil {
					return err
				}
				cfg.ApplyDefaults()
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [config_file]",
		Short: "Write the default configuration to a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveConfig(args[0], config.GetDefaultConfig()); err != nil {
				return err
			}
			shared.ColorSuccess.Printf("✅ Wrote default config to %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(showCmd, initCmd)
	return cmd
}
