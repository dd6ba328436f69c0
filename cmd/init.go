package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pharos-integrity/pharos/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a pharos configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the model provider, server port and activity log settings, and writes them to pharos.yml (or --config).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgFile)
		if c.LLM.APIKeyEnv != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s before starting the server.\n", c.LLM.APIKeyEnv)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
