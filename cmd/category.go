package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"categories"},
	Short:   "Manage the content categories shown in the menu",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, closeDB, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		cats := cat.Categories()
		if len(cats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No categories.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSLUG\tLABEL")
		for _, c := range cats {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Slug, c.Label)
		}
		return tw.Flush()
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Add a category under Study Materials",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, closeDB, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		c, err := cat.AddCategory(cmd.Context(), actorCLI, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %q as ?page=%s\n", c.Label, c.Slug)
		return nil
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category id %q", args[0])
		}
		cat, closeDB, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		if err := cat.RemoveCategory(cmd.Context(), actorCLI, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed category %d\n", id)
		return nil
	},
}

func init() {
	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryRemoveCmd)
	rootCmd.AddCommand(categoryCmd)
}
