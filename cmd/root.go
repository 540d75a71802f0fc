package cmd

import (
	"github.com/spf13/cobra"
	"github.com/unlockenglish/tutorsite/internal/config"
	"github.com/unlockenglish/tutorsite/internal/logger"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tutorsite",
	Short: "Content site for an English tutor",
	Long: `Tutorsite serves an English tutor's lessons, notices and student topic
requests. The public site is driven by a single page query parameter;
the teacher manages content from the admin area, the JSON API or this CLI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}
		level := "info"
		if cfg, err := config.Load(cfgFile); err == nil {
			level = cfg.LogLevel
		}
		if verbose {
			level = "debug"
		}
		logger.Setup(Version, level)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
