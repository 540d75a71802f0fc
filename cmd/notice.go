package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var noticeCmd = &cobra.Command{
	Use:   "notice",
	Short: "Show or post the home page ticker notice",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, closeDB, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		n := cat.Notice()
		if n == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No notice posted.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n(posted %s)\n", n.Content, n.CreatedAt.Format("2006-01-02 15:04"))
		return nil
	},
}

var noticePostCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Post a new notice",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, closeDB, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		n, err := cat.PostNotice(cmd.Context(), actorCLI, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Posted notice %d\n", n.ID)
		return nil
	},
}

func init() {
	noticeCmd.AddCommand(noticePostCmd)
	rootCmd.AddCommand(noticeCmd)
}
