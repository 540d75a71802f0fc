package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/unlockenglish/tutorsite/internal/auth"
	"github.com/unlockenglish/tutorsite/internal/session"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long:  `Creates an admin account. The password is prompted for when --password is not given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openAuth()
		if err != nil {
			return err
		}
		defer closeDB()

		password := adminPassword
		if password == "" {
			prompt := promptui.Prompt{
				Label: "Password",
				Mask:  '*',
				Validate: func(s string) error {
					if len(s) < 8 {
						return fmt.Errorf("must be at least 8 characters")
					}
					return nil
				},
			}
			if password, err = prompt.Run(); err != nil {
				return err
			}
		}

		u, err := svc.CreateUser(cmd.Context(), auth.NewUser{Email: adminEmail, Name: adminName, Password: password})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openAuth()
		if err != nil {
			return err
		}
		defer closeDB()

		users, err := svc.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No admin accounts. Run `tutorsite admin create`.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "EMAIL\tNAME\tCREATED")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Email, u.Name, u.CreatedAt.Format("2006-01-02"))
		}
		return tw.Flush()
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin e-mail address")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "display name")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "password (prompted when empty)")
	adminCreateCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminCreateCmd, adminListCmd)
	rootCmd.AddCommand(adminCmd)
}

func openAuth() (*auth.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	d, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := auth.NewService(auth.NewStore(d), session.NewMemoryStore(), cfg.SessionTTL())
	return svc, func() { d.Close() }, nil
}
