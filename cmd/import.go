package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unlockenglish/tutorsite/internal/importer"
	"github.com/unlockenglish/tutorsite/internal/progress"
	"github.com/unlockenglish/tutorsite/internal/walker"
)

var (
	importDryRun  bool
	importInclude []string
	importExclude []string
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Publish a directory of markdown lessons",
	Long: `Walks dir for markdown lessons and publishes each one as a resource.
A lesson's category comes from its YAML front matter, or else from the
name of its top-level directory. Lessons that fail validation are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, closeDB, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		res, err := importer.Run(cmd.Context(), cat, importer.Options{
			Walker: walker.Config{
				RootDir: args[0],
				Include: importInclude,
				Exclude: importExclude,
			},
			DryRun:   importDryRun,
			Reporter: progress.NewReporter("Importing lessons"),
		})
		if res != nil {
			out := cmd.OutOrStdout()
			for _, l := range res.Planned {
				fmt.Fprintf(out, "would publish %s -> %s (%s)\n", l.RelPath, l.Category, l.Title)
			}
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "skipped %s: %s\n", s.RelPath, s.Reason)
			}
			if importDryRun {
				fmt.Fprintf(out, "%d lesson(s) planned, %d skipped\n", len(res.Planned), len(res.Skipped))
			} else {
				fmt.Fprintf(out, "%d lesson(s) published, %d skipped\n", len(res.Imported), len(res.Skipped))
			}
		}
		return err
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse lessons without publishing")
	importCmd.Flags().StringSliceVar(&importInclude, "include", nil, "glob patterns to include (default **/*.md, **/*.markdown)")
	importCmd.Flags().StringSliceVar(&importExclude, "exclude", nil, "additional glob patterns to exclude")
	rootCmd.AddCommand(importCmd)
}
