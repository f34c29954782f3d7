// Package httpapi serves the interview lifecycle over JSON/HTTP.
package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/assessment"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/company"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/interview"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/notification"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/scorecard"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/identity"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler holds the services behind the routes
type Handler struct {
	interviews    *interview.Service
	assessments   *assessment.Service
	companies     *company.Service
	notifications *notification.Dispatcher
	scorecards    *scorecard.Service
	logger        *logging.Logger
}

func NewHandler(
	interviews *interview.Service,
	assessments *assessment.Service,
	companies *company.Service,
	notifications *notification.Dispatcher,
	scorecards *scorecard.Service,
	logger *logging.Logger,
) (*Handler, error) {
	if interviews == nil || assessments == nil || companies == nil || notifications == nil || scorecards == nil {
		return nil, errors.New("httpapi: all services are required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{
		interviews:    interviews,
		assessments:   assessments,
		companies:     companies,
		notifications: notifications,
		scorecards:    scorecards,
		logger:        logger.Named("http"),
	}, nil
}

// caller is set by identity.Middleware on every /api/v1 route
func caller(c *gin.Context) domain.Identity {
	who, _ := identity.FromGin(c)
	return who
}

func ctx(c *gin.Context) context.Context {
	return c.Request.Context()
}

type createRequest struct {
	JobID           string     `json:"job_id" binding:"required"`
	ApplicationID   string     `json:"application_id" binding:"required"`
	Mode            string     `json:"mode" binding:"required"`
	InterviewTypes  []string   `json:"interview_types"`
	DurationMinutes int        `json:"duration_minutes"`
	ScheduledStart  *time.Time `json:"scheduled_start"`
}

func (h *Handler) createInterview(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	in := interview.CreateInput{
		JobID:           req.JobID,
		ApplicationID:   req.ApplicationID,
		Mode:            req.Mode,
		InterviewTypes:  req.InterviewTypes,
		DurationMinutes: req.DurationMinutes,
	}
	if req.ScheduledStart != nil {
		in.ScheduledStart = *req.ScheduledStart
	}

	iv, err := h.interviews.Create(ctx(c), caller(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toInterview(iv))
}

func (h *Handler) getInterview(c *gin.Context) {
	iv, err := h.interviews.Get(ctx(c), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toInterview(iv))
}

// transition adapts a lifecycle call that needs only the interview id
func (h *Handler) transition(op func(context.Context, domain.Identity, string) (domain.Interview, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		iv, err := op(ctx(c), caller(c), c.Param("id"))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toInterview(iv))
	}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// bindOptional accepts an empty body
func bindOptional(c *gin.Context, v any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(v)
}

func (h *Handler) cancelInterview(c *gin.Context) {
	var req reasonRequest
	if err := bindOptional(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	iv, err := h.interviews.Cancel(ctx(c), caller(c), c.Param("id"), req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toInterview(iv))
}

type rescheduleRequest struct {
	NewTime time.Time `json:"new_time" binding:"required"`
	Reason  string    `json:"reason"`
}

func (h *Handler) requestReschedule(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	iv, err := h.interviews.RequestReschedule(ctx(c), caller(c), c.Param("id"), interview.RescheduleInput{
		NewTime: req.NewTime,
		Reason:  req.Reason,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toInterview(iv))
}

func (h *Handler) rejectReschedule(c *gin.Context) {
	var req reasonRequest
	if err := bindOptional(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	iv, err := h.interviews.RejectReschedule(ctx(c), caller(c), c.Param("id"), req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toInterview(iv))
}

type completeRequest struct {
	OverallScore *float64 `json:"overall_score" binding:"required"`
	Result       string   `json:"result"`
	Suggestion   string   `json:"suggestion"`
	Comments     string   `json:"comments"`
}

func (h *Handler) completeInterview(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	iv, err := h.interviews.Complete(ctx(c), caller(c), c.Param("id"), interview.CompleteInput{
		OverallScore: *req.OverallScore,
		Result:       req.Result,
		Suggestion:   req.Suggestion,
		Comments:     req.Comments,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toInterview(iv))
}

type generateRequest struct {
	Count int `json:"count"`
}

func (h *Handler) generateQuestions(c *gin.Context) {
	var req generateRequest
	if err := bindOptional(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	items, err := h.assessments.GenerateQuestions(ctx(c), caller(c), c.Param("id"), req.Count)
	if err != nil {
		h.fail(c, err)
		return
	}
	who := caller(c)
	c.JSON(http.StatusCreated, gin.H{"questions": toQuestions(items, who.IsInterviewer())})
}

func (h *Handler) listQuestions(c *gin.Context) {
	items, err := h.assessments.Questions(ctx(c), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	who := caller(c)
	c.JSON(http.StatusOK, gin.H{"questions": toQuestions(items, who.IsInterviewer())})
}

type answersRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

func (h *Handler) submitAnswers(c *gin.Context) {
	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	iv, eval, err := h.assessments.SubmitAnswers(ctx(c), caller(c), c.Param("id"), req.Answers)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"interview":     toInterview(iv),
		"overall_score": eval.OverallScore,
		"result":        eval.Result,
	})
}

func (h *Handler) evaluate(c *gin.Context) {
	eval, err := h.assessments.Evaluate(ctx(c), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toEvaluation(eval))
}

func (h *Handler) getApplication(c *gin.Context) {
	view, err := h.interviews.ApplicationView(ctx(c), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toApplicationView(view))
}

func (h *Handler) applicationQuota(c *gin.Context) {
	status, err := h.interviews.CheckAIQuota(ctx(c), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) getSettings(c *gin.Context) {
	s, err := h.companies.Settings(ctx(c), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettings(s))
}

func (h *Handler) patchSettings(c *gin.Context) {
	var patch company.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, err)
		return
	}
	s, err := h.companies.UpdateSettings(ctx(c), caller(c), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettings(s))
}

func (h *Handler) listNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		h.fail(c, domain.ErrInvalidInput)
		return
	}
	items, err := h.notifications.List(ctx(c), caller(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": toNotifications(items), "count": len(items)})
}

func (h *Handler) markRead(c *gin.Context) {
	if err := h.notifications.MarkRead(ctx(c), caller(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) scorecardsXLSX(c *gin.Context) {
	rows, err := h.scorecards.Rows(ctx(c), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := scorecard.WriteXLSX(&buf, rows); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="scorecards-`+c.Param("id")+`.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) scorecardsSheet(c *gin.Context) {
	var target scorecard.SheetTarget
	if err := c.ShouldBindJSON(&target); err != nil {
		h.badRequest(c, err)
		return
	}
	res, err := h.scorecards.ExportSheet(ctx(c), caller(c), c.Param("id"), target)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
