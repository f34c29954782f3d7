package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/assessment"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/interview"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/job"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/notification"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/reminder"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/scorecard"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/events"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/httpapi"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/identity"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/mcp"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/metrics"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	neo4jstore "github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/neo4j"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/calendar"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/gmail"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/llm"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
	pkgneo4j "github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/neo4j"
	pkgredis "github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/redis"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/sheets"
)

// Optional integrations return an untyped nil interface when unconfigured so
// the services see "absent" rather than a typed nil.

// provideStore opens the store selected by STORE_DRIVER
func provideStore(ctx context.Context, cfg config.Config, log *logging.Logger) (repository.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreNeo4j:
		client, err := pkgneo4j.NewClient(ctx, pkgneo4j.Config{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
		if err != nil {
			return nil, err
		}
		store, err := neo4jstore.NewStore(ctx, client)
		if err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		log.Info("store ready", "driver", cfg.Store.Driver, "uri", cfg.Neo4j.URI)
		return store, nil
	default:
		store, err := sqlstore.Open(ctx, sqlstore.Config{
			Driver:  cfg.Store.Driver,
			DSN:     cfg.Store.DSN,
			Migrate: cfg.Store.Migrate,
		})
		if err != nil {
			return nil, err
		}
		log.Info("store ready", "driver", cfg.Store.Driver, "migrated", cfg.Store.Migrate)
		return store, nil
	}
}

func provideRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.Redis.Address == "" {
		return nil, nil
	}
	return pkgredis.NewClient(ctx, pkgredis.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func providePublisher(client *redis.Client, cfg config.Config, log *logging.Logger) notification.Publisher {
	if client == nil {
		return nil
	}
	return events.NewPublisher(client, cfg.Redis.Stream, log)
}

func provideMailer(ctx context.Context, cfg config.Config) (notification.Mailer, error) {
	if cfg.Google.GmailCredentials == "" {
		return nil, nil
	}
	return gmail.NewClient(ctx, gmail.Config{
		CredentialsPath: cfg.Google.GmailCredentials,
		TokenPath:       cfg.Google.GmailToken,
		Sender:          cfg.Google.GmailSender,
	})
}

func provideDispatcher(
	store repository.Store,
	publisher notification.Publisher,
	mailer notification.Mailer,
	m *metrics.Metrics,
	cfg config.Config,
	log *logging.Logger,
) (*notification.Dispatcher, error) {
	opts := []notification.Option{
		notification.WithRecorder(m),
		notification.WithLogger(log),
		notification.WithTimeout(cfg.DependencyTimeout),
	}
	if publisher != nil {
		opts = append(opts, notification.WithPublisher(publisher))
	}
	if mailer != nil {
		opts = append(opts, notification.WithMailer(mailer))
	}
	return notification.NewDispatcher(store.Notifications(), opts...)
}

// calendarAdapter maps lifecycle events onto the Google Calendar client
type calendarAdapter struct {
	client *calendar.Client
}

func (a calendarAdapter) CreateEvent(ctx context.Context, ev domain.CalendarEvent) (string, error) {
	return a.client.CreateEvent(ctx, calendar.Event(ev))
}

func (a calendarAdapter) UpdateEvent(ctx context.Context, eventID string, ev domain.CalendarEvent) error {
	return a.client.UpdateEvent(ctx, eventID, calendar.Event(ev))
}

func (a calendarAdapter) DeleteEvent(ctx context.Context, eventID string) error {
	return a.client.DeleteEvent(ctx, eventID)
}

func provideCalendar(ctx context.Context, cfg config.Config) (interview.Calendar, error) {
	if cfg.Google.CredentialsPath == "" {
		return nil, nil
	}
	client, err := calendar.NewClient(ctx, calendar.Config{
		CredentialsPath: cfg.Google.CredentialsPath,
		CalendarID:      cfg.Google.CalendarID,
		SendUpdates:     cfg.Google.CalendarUpdates,
	})
	if err != nil {
		return nil, err
	}
	return calendarAdapter{client: client}, nil
}

func provideInterviews(
	cfg config.Config,
	store repository.Store,
	cal interview.Calendar,
	notes *notification.Dispatcher,
	m *metrics.Metrics,
	log *logging.Logger,
) (*interview.Service, error) {
	return interview.NewService(
		interview.WithStore(store),
		interview.WithCalendar(cal),
		interview.WithNotifier(notes),
		interview.WithRecorder(m),
		interview.WithLogger(log),
		interview.WithDependencyTimeout(cfg.DependencyTimeout),
	)
}

// provideModel returns nil when no provider credentials are configured;
// question generation then fails with a dependency error.
func provideModel(ctx context.Context, cfg config.Config, log *logging.Logger) (llm.Client, error) {
	switch {
	case cfg.AI.Provider == llm.ProviderVertexAI && cfg.AI.Project == "":
		log.Warn("vertexai selected without GOOGLE_CLOUD_PROJECT; question generation disabled")
		return nil, nil
	case cfg.AI.Provider != llm.ProviderVertexAI && cfg.AI.APIKey == "":
		log.Warn("no AI_API_KEY; question generation disabled", "provider", cfg.AI.Provider)
		return nil, nil
	}
	return llm.New(ctx, llm.Config{
		Provider:  cfg.AI.Provider,
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		Project:   cfg.AI.Project,
		Location:  cfg.AI.Location,
		MaxTokens: cfg.AI.MaxTokens,
	})
}

func provideGenerator(model llm.Client) assessment.Generator {
	if model == nil {
		return nil
	}
	return model
}

func provideAssessments(
	store repository.Store,
	gen assessment.Generator,
	interviews *interview.Service,
	log *logging.Logger,
) (*assessment.Service, error) {
	return assessment.NewService(store, gen, interviews, log)
}

func provideSheets(ctx context.Context, cfg config.Config) (scorecard.SheetWriter, error) {
	if cfg.Google.CredentialsPath == "" {
		return nil, nil
	}
	client, err := sheets.NewClient(ctx, sheets.Config{CredentialsPath: cfg.Google.CredentialsPath})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideReminders(store repository.Store, notes *notification.Dispatcher, log *logging.Logger) (*reminder.Service, error) {
	return reminder.NewService(store, notes, log)
}

func provideJobs(store repository.Store, log *logging.Logger) (*job.Service, error) {
	return job.NewService(store, job.WithLogger(log))
}

func provideTokens(cfg config.Config) (*identity.Manager, error) {
	return identity.NewManager(cfg.SessionSecret, cfg.SessionTTL)
}

func provideMCP(
	interviews *interview.Service,
	assessments *assessment.Service,
	scorecards *scorecard.Service,
	log *logging.Logger,
) http.Handler {
	return mcp.Handler(mcp.Resources{
		Interviews: interviews,
		Questions:  assessments,
		Scorecards: scorecards,
	}, log)
}

func provideRouter(
	h *httpapi.Handler,
	tokens *identity.Manager,
	m *metrics.Metrics,
	store repository.Store,
	mcpHandler http.Handler,
	log *logging.Logger,
) *gin.Engine {
	return httpapi.NewRouter(h, httpapi.RouterConfig{
		Verifier: tokens,
		Metrics:  m,
		Health:   store,
		MCP:      mcpHandler,
		Logger:   log,
	})
}

func storeDescription(cfg config.Config) string {
	if cfg.Store.Driver == config.StoreNeo4j {
		return fmt.Sprintf("%s (%s)", cfg.Store.Driver, cfg.Neo4j.URI)
	}
	return cfg.Store.Driver
}
