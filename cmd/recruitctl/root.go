package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/server"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// app carries the flags shared by every command and builds resources on demand
type app struct {
	uid       string
	role      string
	companyID string
	logLevel  string

	load func() (config.Config, error)
}

func (a *app) identity() (domain.Identity, error) {
	role, err := domain.ParseRole(a.role)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UID: a.uid, Role: role, CompanyID: a.companyID}, nil
}

func (a *app) logger() *logging.Logger {
	return logging.New(a.logLevel, "console")
}

// withResources opens the configured store and services for one command
func (a *app) withResources(ctx context.Context, fn func(res *server.Resources) error) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	res, err := server.InitializeResources(ctx, cfg, a.logger())
	if err != nil {
		return err
	}
	defer func() { _ = res.Close(context.Background()) }()
	return fn(res)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCommand(load func() (config.Config, error)) *cobra.Command {
	a := &app{load: load}

	root := &cobra.Command{
		Use:           "recruitctl",
		Short:         "Operate the recruito interview service",
		Long:          `Administrative commands for the recruito interview service: schema migrations, record imports, company settings, AI quota checks, session tokens and scorecard exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.uid, "as-uid", "recruitctl", "user id to act as")
	root.PersistentFlags().StringVar(&a.role, "as-role", string(domain.RoleAdmin), "role to act as")
	root.PersistentFlags().StringVar(&a.companyID, "company", "", "company the acting user belongs to")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newMigrateCommand(a),
		newImportCommand(a),
		newSettingsCommand(a),
		newQuotaCommand(a),
		newTokenCommand(a),
		newExportCommand(a),
	)
	return root
}

func requireCompany(a *app) error {
	if a.companyID == "" {
		return fmt.Errorf("--company is required")
	}
	return nil
}
