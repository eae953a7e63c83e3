package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"recruitsync_backend/database"
	"recruitsync_backend/internal/auth"
	"recruitsync_backend/internal/config"
	"recruitsync_backend/internal/logger"
	"recruitsync_backend/internal/services"
)

var cfgFile string

// Execute runs the recruitsync command line.
func Execute() error {
	return newRootCommand().ExecuteContext(context.Background())
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "recruitsync",
		Short:         "Recruitment platform integration and sync engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")

	root.AddCommand(serveCommand(), migrateCommand(), syncCommand(), tokenCommand())
	return root
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		if err := os.Setenv("CONFIG_PATH", cfgFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.AppConfig = cfg
	logger.Init(cfg.Server.Env)
	return cfg, nil
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			return database.Seed(db)
		},
	}
}

func syncCommand() *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull candidates from every active platform, or from one with --platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := logger.WithCorrelationID(cmd.Context(), fmt.Sprintf("cli-%d", time.Now().Unix()))

			var results []*services.SyncResult
			if platform != "" {
				result := a.Services.SyncService.SyncPlatformByName(ctx, platform)
				if result.Reason == services.ReasonNotFound {
					return fmt.Errorf("platform %q is not connected", platform)
				}
				results = []*services.SyncResult{result}
			} else {
				results, err = a.Services.SyncService.SyncAll(ctx)
				if err != nil {
					return err
				}
			}

			renderResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "sync only this platform")
	return cmd
}

func tokenCommand() *cobra.Command {
	var userID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token for an operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := mintToken(cfg, userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleRecruiter, "admin or recruiter")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func mintToken(cfg *config.Config, userID, role string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	if err := auth.ValidateRole(role); err != nil {
		return "", err
	}
	return auth.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute).GenerateToken(userID, role)
}

func renderResults(w io.Writer, results []*services.SyncResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Platform", "Status", "Found", "Created", "Skipped", "Error"})

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
		t.AppendRow(table.Row{r.Platform, r.Status, r.CandidatesFound, r.CandidatesCreated, len(r.SkippedEmails), r.Error})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d ok", succeeded, len(results))})
	t.Render()
}
