package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantlab/silverquant/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a default configuration file",
	Long: `Config writes the default configuration for the Shanghai silver
contract to the path given by --config, ready to edit.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.Default().SaveToFile(cfgFile); err != nil {
		return err
	}
	fmt.Printf("Wrote default configuration to %s\n", cfgFile)
	return nil
}
