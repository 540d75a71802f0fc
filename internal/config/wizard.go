package config

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to tutorsite! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Site strings.
	var err error
	if cfg.App.Name, err = ask("Site name", cfg.App.Name, required); err != nil {
		return nil, err
	}
	if cfg.App.Tagline, err = ask("Tagline", cfg.App.Tagline, nil); err != nil {
		return nil, err
	}
	if cfg.App.TeacherName, err = ask("Teacher name", cfg.App.TeacherName, required); err != nil {
		return nil, err
	}
	if cfg.App.Phone, err = ask("Contact phone", "", nil); err != nil {
		return nil, err
	}
	if cfg.App.Email, err = ask("Contact e-mail", "", optionalEmail); err != nil {
		return nil, err
	}

	// 2. Storage.
	driverPrompt := promptui.Select{
		Label: "Select content store",
		Items: []string{
			"sqlite   - local file under the data directory",
			"postgres - hosted database",
		},
	}
	driverIdx, _, err := driverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	if driverIdx == 1 {
		cfg.Database.Driver = DriverPostgres
		if cfg.Database.DSN, err = ask("Postgres DSN (leave blank to use SQLite until set)", "", nil); err != nil {
			return nil, err
		}
	}
	if cfg.DataDir, err = ask("Data directory", cfg.DataDir, required); err != nil {
		return nil, err
	}

	// 3. Listener.
	portStr, err := ask("HTTP port", strconv.Itoa(cfg.Server.Port), validPort)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 4. First admin account.
	if cfg.Admin.Email, err = ask("Admin e-mail (blank to skip)", cfg.App.Email, optionalEmail); err != nil {
		return nil, err
	}
	if cfg.Admin.Email != "" {
		pwPrompt := promptui.Prompt{
			Label:    "Admin password",
			Mask:     '*',
			Validate: minLength(8),
		}
		if cfg.Admin.Password, err = pwPrompt.Run(); err != nil {
			return nil, fmt.Errorf("admin password: %w", err)
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	if cfg.Admin.Password != "" {
		fmt.Println("The admin password is stored in plain text; remove it once the account exists.")
	}
	return cfg, nil
}

func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{Label: label, Default: def, Validate: validate}
	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(v), nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}

func optionalEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("not a valid e-mail address")
	}
	return nil
}

func validPort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func minLength(n int) promptui.ValidateFunc {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}
