//go:build wireinject
// +build wireinject

package server

import (
	"context"

	"github.com/google/wire"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/company"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/scorecard"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/httpapi"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/metrics"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// InitializeResources creates Resources with all resources wired up
func InitializeResources(ctx context.Context, cfg config.Config, log *logging.Logger) (*Resources, error) {
	wire.Build(
		// Infrastructure
		provideStore,
		provideRedis,
		metrics.New,
		provideTokens,

		// Integrations, nil when unconfigured
		providePublisher,
		provideMailer,
		provideCalendar,
		provideModel,
		provideGenerator,
		provideSheets,

		// Services
		provideDispatcher,
		provideInterviews,
		provideAssessments,
		company.NewService,
		scorecard.NewService,
		provideReminders,
		provideJobs,

		// Transport
		httpapi.NewHandler,
		provideMCP,
		provideRouter,

		newResources,
	)

	return &Resources{}, nil
}
