package server

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/assessment"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/company"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/interview"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/job"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/notification"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/reminder"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/scorecard"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/identity"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/metrics"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/repository"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/llm"
)

// Resources holds every long-lived dependency of the service
type Resources struct {
	Store         repository.Store
	Interviews    *interview.Service
	Assessments   *assessment.Service
	Companies     *company.Service
	Notifications *notification.Dispatcher
	Scorecards    *scorecard.Service
	Reminders     *reminder.Service
	Jobs          *job.Service
	Metrics       *metrics.Metrics
	Tokens        *identity.Manager
	Router        *gin.Engine

	model llm.Client
	redis *redis.Client
}

func newResources(
	store repository.Store,
	interviews *interview.Service,
	assessments *assessment.Service,
	companies *company.Service,
	notifications *notification.Dispatcher,
	scorecards *scorecard.Service,
	reminders *reminder.Service,
	jobs *job.Service,
	m *metrics.Metrics,
	tokens *identity.Manager,
	router *gin.Engine,
	model llm.Client,
	rdb *redis.Client,
) *Resources {
	return &Resources{
		Store:         store,
		Interviews:    interviews,
		Assessments:   assessments,
		Companies:     companies,
		Notifications: notifications,
		Scorecards:    scorecards,
		Reminders:     reminders,
		Jobs:          jobs,
		Metrics:       m,
		Tokens:        tokens,
		Router:        router,
		model:         model,
		redis:         rdb,
	}
}

// Close drains pending notifications, then releases clients and the store
func (r *Resources) Close(ctx context.Context) error {
	var errs []error
	if err := r.Notifications.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.model != nil {
		if err := r.model.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.Store.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
