package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unlockenglish/tutorsite/internal/api"
	"github.com/unlockenglish/tutorsite/internal/audit"
	"github.com/unlockenglish/tutorsite/internal/auth"
	"github.com/unlockenglish/tutorsite/internal/catalog"
	"github.com/unlockenglish/tutorsite/internal/config"
	"github.com/unlockenglish/tutorsite/internal/live"
	"github.com/unlockenglish/tutorsite/internal/metrics"
	"github.com/unlockenglish/tutorsite/internal/navigation"
	"github.com/unlockenglish/tutorsite/internal/notifications"
	"github.com/unlockenglish/tutorsite/internal/server"
	"github.com/unlockenglish/tutorsite/internal/session"
	"github.com/unlockenglish/tutorsite/internal/site"
	"github.com/unlockenglish/tutorsite/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Starts the public site, the admin area, the JSON API and the live
websocket on a single port. Content is loaded from the database at startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	sessions, err := openSessions(cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	authSvc := auth.NewService(auth.NewStore(database), sessions, cfg.SessionTTL())
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		created, err := authSvc.Bootstrap(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("creating admin account: %w", err)
		}
		if created {
			slog.Info("admin account created", "email", cfg.Admin.Email)
		}
	}

	auditStore := audit.NewStore(database)
	dispatcher := notifications.NewDispatcher(notifiers(cfg)...)
	defer dispatcher.Wait()
	m := metrics.New()

	var cat *catalog.Catalog
	hub := live.NewHub(func() []live.Message {
		return []live.Message{
			{Type: live.TypeNotice, Notice: cat.Notice()},
			{Type: live.TypeNav, Nav: cat.Tree()},
		}
	})
	defer hub.Close()

	cat = catalog.New(store.NewStore(database), catalog.Deps{
		Metrics:   m,
		Audit:     auditStore,
		Notifier:  dispatcher,
		Listeners: []catalog.Listener{hub},
	})
	if err := cat.Load(ctx); err != nil {
		// The site still serves whatever loaded; the menu keeps its built-in sections.
		slog.Error("loading content", "error", err)
	}

	srv := server.New(server.Config{
		Port:              cfg.Server.Port,
		AllowAll:          cfg.Server.AllowAllOrigins,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	}, database, m, authSvc)

	pages, err := site.New(site.Info{
		AppName:     cfg.App.Name,
		Tagline:     cfg.App.Tagline,
		TeacherName: cfg.App.TeacherName,
		Phone:       cfg.App.Phone,
		Email:       cfg.App.Email,
	}, site.Deps{
		Catalog:       cat,
		Auth:          authSvc,
		Audit:         auditStore,
		Metrics:       m,
		Live:          hub,
		Limit:         srv.Limit,
		SessionTTL:    cfg.SessionTTL(),
		SecureCookies: cfg.Server.SecureCookies,
	})
	if err != nil {
		return err
	}

	r := srv.Router()
	pages.RegisterRoutes(r)
	api.New(api.Deps{
		Catalog:       cat,
		Auth:          authSvc,
		Audit:         auditStore,
		Site:          navigation.Site{AppName: cfg.App.Name, Tagline: cfg.App.Tagline},
		Limit:         srv.Limit,
		SessionTTL:    cfg.SessionTTL(),
		SecureCookies: cfg.Server.SecureCookies,
	}).RegisterRoutes(r)

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "tutorsite %s starting on port %d\n", Version, cfg.Server.Port)
	fmt.Fprintf(os.Stderr, "  Site:    http://localhost:%d/\n", cfg.Server.Port)
	fmt.Fprintf(os.Stderr, "  Admin:   http://localhost:%d/?page=admin\n", cfg.Server.Port)
	fmt.Fprintf(os.Stderr, "  Metrics: http://localhost:%d/metrics\n", cfg.Server.Port)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openSessions picks redis when a URL is configured and the in-process store
// otherwise.
func openSessions(cfg *config.Config) (session.Store, error) {
	if cfg.Sessions.RedisURL == "" {
		return session.NewMemoryStore(), nil
	}
	rs, err := session.NewRedisStore(cfg.Sessions.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rs, nil
}

func notifiers(cfg *config.Config) []notifications.Notifier {
	ns := []notifications.Notifier{notifications.LogNotifier{}}
	if cfg.Notify.WebhookURL != "" {
		ns = append(ns, notifications.NewWebhookNotifier(cfg.Notify.WebhookURL))
	}
	if cfg.Notify.SendgridKey != "" {
		ns = append(ns, notifications.NewSendgridNotifier(cfg.Notify.SendgridKey, cfg.App.Name,
			cfg.Notify.FromEmail, cfg.Notify.ToName, cfg.Notify.ToEmail))
	}
	return ns
}
