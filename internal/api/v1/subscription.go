package v1

import (
	"net/http"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/service"
	"github.com/gin-gonic/gin"
)

// SubscriptionHandler exposes the lifecycle operations over HTTP. Handlers
// only bind DTOs and translate errors; all orchestration lives in the
// service.
type SubscriptionHandler struct {
	service service.SubscriptionService
	logger  *logger.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		logger:  logger,
	}
}

// Start begins billing a subject on a plan immediately
func (h *SubscriptionHandler) Start(c *gin.Context) {
	var req dto.StartSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Start(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ScheduledStart books a subscription beginning at the next period boundary
func (h *SubscriptionHandler) ScheduledStart(c *gin.Context) {
	var req dto.ScheduledStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ScheduledStart(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Upgrade moves the current subscription to a pricier plan immediately
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	var req dto.UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Upgrade(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Downgrade books a move to a cheaper plan at the period boundary
func (h *SubscriptionHandler) Downgrade(c *gin.Context) {
	var req dto.DowngradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Downgrade(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Swap replaces the current subscription with a new plan immediately
func (h *SubscriptionHandler) Swap(c *gin.Context) {
	var req dto.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Swap(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Cancel ends the current subscription now or at the period end
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CancelSchedule drops the pending plan change
func (h *SubscriptionHandler) CancelSchedule(c *gin.Context) {
	if err := h.service.CancelSchedule(c.Request.Context(), c.Param("id")); err != nil {
		h.abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Pause emits the paused event
func (h *SubscriptionHandler) Pause(c *gin.Context) {
	if err := h.service.Pause(c.Request.Context(), c.Param("id")); err != nil {
		h.abort(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// Resume reactivates a subscription cancelled at period end
func (h *SubscriptionHandler) Resume(c *gin.Context) {
	resp, err := h.service.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// NextBillingTime reports the next charge instant. The optional "at" query
// parameter overrides the computed boundary.
func (h *SubscriptionHandler) NextBillingTime(c *gin.Context) {
	var override *time.Time
	if raw := c.Query("at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.abort(c, ierr.WithError(err).
				WithHint("The 'at' parameter must be an RFC3339 timestamp").
				Mark(ierr.ErrValidation))
			return
		}
		override = &at
	}

	resp, err := h.service.GetNextBillingTime(c.Request.Context(), c.Param("id"), override)
	if err != nil {
		h.abort(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusOK, gin.H{"next_billing_time": nil})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Proration previews the cost of a plan change
func (h *SubscriptionHandler) Proration(c *gin.Context) {
	var req dto.ProrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetProration(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) abort(c *gin.Context, err error) {
	h.logger.Debugw("request failed",
		"path", c.FullPath(),
		"error", err)
	c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
