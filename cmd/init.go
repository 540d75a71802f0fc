package cmd

import (
	"github.com/spf13/cobra"
	"github.com/unlockenglish/tutorsite/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tutorsite configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the site name, contact details, port and admin account, then writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
