package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mysterylink/button-server/internal/domain"
	"github.com/mysterylink/button-server/internal/logger"
	"github.com/mysterylink/button-server/internal/messaging"
	"github.com/mysterylink/button-server/internal/ownership"
)

const (
	defaultRecentClicksLimit = 50
	maxRecentClicksLimit     = 100
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// Purchase verifies a payment transaction and creates a button ownership
	// POST /api/v1/ownerships
	Purchase(c *gin.Context)

	// GetCurrentOwnership returns the active ownership with its link and
	// remaining seconds, or 404 when nobody owns the button
	// GET /api/v1/ownerships/current
	GetCurrentOwnership(c *gin.Context)

	// SetLink creates or replaces the destination URL of an ownership
	// PATCH /api/v1/ownerships/:id/link
	SetLink(c *gin.Context)

	// SetVisuals updates the button's appearance
	// PATCH /api/v1/ownerships/:id/visuals
	SetVisuals(c *gin.Context)

	// SubmitLink is the legacy flow: one payment buys one link replacement
	// POST /api/v1/links
	SubmitLink(c *gin.Context)

	// GetCurrentLink returns the most recently created link, or 404 when
	// no link has ever been submitted
	// GET /api/v1/links/current
	GetCurrentLink(c *gin.Context)

	// RecordClick appends a click against the current link
	// POST /api/v1/clicks
	RecordClick(c *gin.Context)

	// GetRecentClicks returns the newest clicks, most recent first
	// GET /api/v1/clicks/recent?limit=<limit>
	GetRecentClicks(c *gin.Context)

	// GetClickCount returns the total number of recorded clicks
	// GET /api/v1/clicks/count
	GetClickCount(c *gin.Context)

	// Redirect records a click and redirects the visitor to the current link
	// GET /r
	Redirect(c *gin.Context)

	// StreamEvents streams ownership, link, and click events over SSE
	// GET /api/v1/events
	StreamEvents(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	service    *ownership.Service
	subscriber messaging.Subscriber
}

// NewHandler creates a new REST API handler
func NewHandler(service *ownership.Service, subscriber messaging.Subscriber) Handler {
	return &handler{
		service:    service,
		subscriber: subscriber,
	}
}

// Purchase verifies the payment and creates a new ownership
func (h *handler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.service.Purchase(c.Request.Context(), ownership.PurchaseParams{
		TxHash:       req.TxHash,
		OwnerAddress: req.OwnerAddress,
		Visuals: domain.ButtonVisuals{
			ButtonColor:    req.ButtonColor,
			ButtonEmoji:    req.ButtonEmoji,
			ButtonImageURL: req.ButtonImageURL,
		},
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetCurrentOwnership returns the active ownership, 404 when the button is free
func (h *handler) GetCurrentOwnership(c *gin.Context) {
	current, err := h.service.Current(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if current == nil {
		respondWithError(c, http.StatusNotFound, errCodeNotFound, "Nobody owns the button right now")
		return
	}
	c.JSON(http.StatusOK, current)
}

// SetLink creates or replaces the ownership's destination URL
func (h *handler) SetLink(c *gin.Context) {
	var req setLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	link, err := h.service.SetLink(c.Request.Context(), ownership.LinkParams{
		OwnershipID:      c.Param("id"),
		RequesterAddress: req.OwnerAddress,
		URL:              req.URL,
		Username:         req.Username,
		PfpURL:           req.PfpURL,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// SetVisuals updates the button's appearance
func (h *handler) SetVisuals(c *gin.Context) {
	var req setVisualsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	updated, err := h.service.SetVisuals(c.Request.Context(), c.Param("id"), req.OwnerAddress, domain.ButtonVisuals{
		ButtonColor:    req.ButtonColor,
		ButtonEmoji:    req.ButtonEmoji,
		ButtonImageURL: req.ButtonImageURL,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// SubmitLink handles the legacy pay-per-link flow
func (h *handler) SubmitLink(c *gin.Context) {
	var req submitLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	link, err := h.service.SubmitLink(c.Request.Context(), ownership.SubmitLinkParams{
		TxHash:      req.TxHash,
		URL:         req.URL,
		SubmittedBy: req.SubmittedBy,
		Username:    req.Username,
		PfpURL:      req.PfpURL,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// GetCurrentLink returns the newest link, 404 when none exist
func (h *handler) GetCurrentLink(c *gin.Context) {
	link, err := h.service.CurrentLink(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if link == nil {
		respondWithError(c, http.StatusNotFound, errCodeNotFound, "No link has been set")
		return
	}
	c.JSON(http.StatusOK, link)
}

// RecordClick appends a click
func (h *handler) RecordClick(c *gin.Context) {
	var req clickRequest
	// The body is optional; anonymous clicks carry no identity
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err.Error())
			return
		}
	}

	userAgent := c.Request.UserAgent()
	click, err := h.service.RecordClick(c.Request.Context(), ownership.ClickParams{
		ClickedBy:       req.ClickedBy,
		ClickerUsername: req.ClickerUsername,
		ClickerPfpURL:   req.ClickerPfpURL,
		UserAgent:       &userAgent,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, click)
}

// GetRecentClicks returns the newest clicks
func (h *handler) GetRecentClicks(c *gin.Context) {
	limit := defaultRecentClicksLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondValidationError(c, "limit must be a positive integer")
			return
		}
		if parsed > maxRecentClicksLimit {
			parsed = maxRecentClicksLimit
		}
		limit = parsed
	}

	clicks, err := h.service.RecentClicks(c.Request.Context(), limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, clicks)
}

// GetClickCount returns the total click count
func (h *handler) GetClickCount(c *gin.Context) {
	count, err := h.service.ClickCount(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, countResponse{Count: count})
}

// Redirect records a click and sends the visitor to the current link
func (h *handler) Redirect(c *gin.Context) {
	link, err := h.service.CurrentLink(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if link == nil {
		respondWithError(c, http.StatusNotFound, errCodeNotFound, "No link has been set")
		return
	}

	userAgent := c.Request.UserAgent()
	anonymous := "anonymous"
	if _, err := h.service.RecordClick(c.Request.Context(), ownership.ClickParams{
		ClickedBy: &anonymous,
		UserAgent: &userAgent,
	}); err != nil {
		// The redirect still proceeds; losing one click is acceptable
		logger.Warn("failed to record redirect click", zap.Error(err))
	}

	c.Redirect(http.StatusFound, link.URL)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "button-server",
	})
}
