package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/company"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/job"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/scorecard"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/identity"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/server"
	neo4jstore "github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/neo4j"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore"
	pkgneo4j "github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/neo4j"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations or create Neo4j constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}

			if cfg.Store.Driver == config.StoreNeo4j {
				client, err := pkgneo4j.NewClient(cmd.Context(), pkgneo4j.Config{
					URI:      cfg.Neo4j.URI,
					Username: cfg.Neo4j.Username,
					Password: cfg.Neo4j.Password,
					Database: cfg.Neo4j.Database,
				})
				if err != nil {
					return err
				}
				store, err := neo4jstore.NewStore(cmd.Context(), client)
				if err != nil {
					_ = client.Close(cmd.Context())
					return err
				}
				_ = store.Close(cmd.Context())
			} else if err := sqlstore.Migrate(cfg.Store.Driver, cfg.Store.DSN); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.Store.Driver)
			return nil
		},
	}
}

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change company interview settings",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the effective settings of --company",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCompany(a); err != nil {
				return err
			}
			who, err := a.identity()
			if err != nil {
				return err
			}
			return a.withResources(cmd.Context(), func(res *server.Resources) error {
				s, err := res.Companies.Settings(cmd.Context(), who, a.companyID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), settingsView(s))
			})
		},
	}

	var (
		maxAI        int
		allowRounds  bool
		maxRounds    int
		reminderLead int
		autoReject   float64
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change selected settings of --company",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCompany(a); err != nil {
				return err
			}
			who, err := a.identity()
			if err != nil {
				return err
			}

			var patch company.SettingsPatch
			flags := cmd.Flags()
			if flags.Changed("max-ai-interviews") {
				patch.MaxAIInterviews = &maxAI
			}
			if flags.Changed("allow-additional-rounds") {
				patch.AllowAdditionalRounds = &allowRounds
			}
			if flags.Changed("max-additional-rounds") {
				patch.MaxAdditionalRounds = &maxRounds
			}
			if flags.Changed("reminder-hours") {
				patch.ReminderHoursBefore = &reminderLead
			}
			if flags.Changed("auto-reject-below") {
				patch.AutoRejectBelowScore = &autoReject
			}

			return a.withResources(cmd.Context(), func(res *server.Resources) error {
				s, err := res.Companies.UpdateSettings(cmd.Context(), who, a.companyID, patch)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), settingsView(s))
			})
		},
	}
	set.Flags().IntVar(&maxAI, "max-ai-interviews", domain.DefaultMaxAIInterviews, "AI interviews allowed per application")
	set.Flags().BoolVar(&allowRounds, "allow-additional-rounds", false, "allow extra human rounds")
	set.Flags().IntVar(&maxRounds, "max-additional-rounds", 0, "extra human rounds allowed")
	set.Flags().IntVar(&reminderLead, "reminder-hours", domain.DefaultReminderHoursBefore, "hours before start to send reminders")
	set.Flags().Float64Var(&autoReject, "auto-reject-below", 0, "reject applications scoring below this")

	cmd.AddCommand(get, set)
	return cmd
}

func settingsView(s domain.CompanySettings) map[string]any {
	return map[string]any{
		"company_id":              s.CompanyID,
		"max_ai_interviews":       s.MaxAIInterviews,
		"allow_additional_rounds": s.AllowAdditionalRounds,
		"max_additional_rounds":   s.MaxAdditionalRounds,
		"reminder_hours_before":   s.ReminderHoursBefore,
		"auto_reject_below_score": s.AutoRejectBelowScore,
	}
}

func newQuotaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quota APPLICATION_ID",
		Short: "Check whether another AI interview may be created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := a.identity()
			if err != nil {
				return err
			}
			return a.withResources(cmd.Context(), func(res *server.Resources) error {
				q, err := res.Interviews.CheckAIQuota(cmd.Context(), who, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), q)
			})
		},
	}
}

func newTokenCommand(a *app) *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for the acting identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			who, err := a.identity()
			if err != nil {
				return err
			}
			who.Email = email

			if ttl <= 0 {
				ttl = cfg.SessionTTL
			}
			tokens, err := identity.NewManager(cfg.SessionSecret, ttl)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(who)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to SESSION_TTL)")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export interview data",
	}

	var (
		out    string
		target scorecard.SheetTarget
	)
	scorecards := &cobra.Command{
		Use:   "scorecards JOB_ID",
		Short: "Write completed interview scorecards to an xlsx file or a Google Sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (out == "") == (target.SpreadsheetID == "") {
				return fmt.Errorf("exactly one of --out or --sheet is required")
			}
			who, err := a.identity()
			if err != nil {
				return err
			}

			return a.withResources(cmd.Context(), func(res *server.Resources) error {
				if target.SpreadsheetID != "" {
					result, err := res.Scorecards.ExportSheet(cmd.Context(), who, args[0], target)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), result)
				}

				rows, err := res.Scorecards.Rows(cmd.Context(), who, args[0])
				if err != nil {
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := scorecard.WriteXLSX(f, rows); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d scorecards to %s\n", len(rows), out)
				return nil
			})
		},
	}
	scorecards.Flags().StringVar(&out, "out", "", "xlsx file to write")
	scorecards.Flags().StringVar(&target.SpreadsheetID, "sheet", "", "Google Sheets spreadsheet id")
	scorecards.Flags().StringVar(&target.Tab, "tab", "", "sheet tab (default Sheet1)")
	scorecards.Flags().BoolVar(&target.Append, "append", false, "append rows instead of replacing the tab")

	cmd.AddCommand(scorecards)
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import job postings and applications from JSON documents",
		Long: `Each FILE holds {"jobs": [...], "applications": [...]}. Records whose id
already exists are skipped, never overwritten.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := a.identity()
			if err != nil {
				return err
			}
			sources := make([]job.Source, 0, len(args))
			for _, path := range args {
				sources = append(sources, job.FileSource(path))
			}
			return a.withResources(cmd.Context(), func(res *server.Resources) error {
				result, err := res.Jobs.Import(cmd.Context(), who, sources...)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}
