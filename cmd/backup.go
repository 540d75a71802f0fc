package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/unlockenglish/tutorsite/internal/backup"
	"github.com/unlockenglish/tutorsite/internal/store"
)

var backupDir string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a JSON snapshot of all content",
	Long: `Exports resources, the latest notice, categories and student requests as
one JSON document. The snapshot is uploaded to the configured S3-compatible
bucket when backup.endpoint is set, and written to a local directory otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		d, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		var sink backup.Sink
		switch {
		case backupDir != "":
			sink = backup.FileSink{Dir: backupDir}
		case cfg.Backup.Endpoint != "":
			ms, err := backup.NewMinioSink(backup.MinioConfig{
				Endpoint:  cfg.Backup.Endpoint,
				Bucket:    cfg.Backup.Bucket,
				AccessKey: cfg.Backup.AccessKey,
				SecretKey: cfg.Backup.SecretKey,
				UseSSL:    cfg.Backup.UseSSL,
			})
			if err != nil {
				return err
			}
			sink = ms
		default:
			sink = backup.FileSink{Dir: cfg.Backup.Dir}
		}

		loc, snap, err := backup.Run(cmd.Context(), store.NewStore(d), sink, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d resource(s), %d categories, %d request(s) to %s\n",
			len(snap.Resources), len(snap.Categories), len(snap.Requests), loc)
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupDir, "dir", "", "write to this directory instead of the configured target")
	rootCmd.AddCommand(backupCmd)
}
