package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/navarrastar/mentorship-landing/pkg/brochure"
	"github.com/navarrastar/mentorship-landing/pkg/middleware"
	"github.com/navarrastar/mentorship-landing/pkg/models"
	"github.com/navarrastar/mentorship-landing/pkg/services"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	submissionService services.LeadSubmissionService
	authService       services.DemoAuthService
	desk              *brochure.Desk
	adminToken        string
	logger            *slog.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(submissionService services.LeadSubmissionService, authService services.DemoAuthService, desk *brochure.Desk, adminToken string) *Handlers {
	return &Handlers{
		submissionService: submissionService,
		authService:       authService,
		desk:              desk,
		adminToken:        adminToken,
		logger:            slog.Default().With("component", "api"),
	}
}

// Register mounts every route on the router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/health", h.HealthCheck)
	router.GET("/brochure/:ticket", h.DownloadBrochure)

	api := router.Group("/api")
	api.POST("/leads", h.SubmitLead)

	auth := api.Group("/auth")
	auth.POST("/signup", h.SignUp)
	auth.POST("/login", h.LogIn)
	auth.POST("/logout", h.LogOut)
	auth.GET("/me", h.Me)

	api.GET("/dashboard", middleware.RequireDemoSession(h.authService), h.Dashboard)
	api.GET("/leads", middleware.RequireAdminToken(h.adminToken), h.ListLeads)
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// SubmitLead processes the enrollment form. The body's "state" is one of
// success or error so the form can render a distinct state for each outcome.
func (h *Handlers) SubmitLead(c *gin.Context) {
	var candidate models.LeadCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		h.logger.Warn("error parsing lead JSON", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"state": "error", "code": "invalid_json", "message": "Invalid JSON format"})
		return
	}

	res := h.submissionService.Submit(c.Request.Context(), candidate)

	switch res.State {
	case services.StateSucceeded:
		body := gin.H{"state": "success", "leadId": res.LeadID, "remote": res.Remote}
		if res.Download != nil {
			body["download"] = res.Download
		}
		c.JSON(http.StatusCreated, body)
	case services.StateRejected:
		c.JSON(http.StatusBadRequest, gin.H{"state": "error", "code": "validation", "fields": res.FieldErrors})
	case services.StateAwaitingIdentity:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"state":   "error",
			"code":    "not_ready",
			"message": "Still connecting, please try again in a moment.",
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"state":   "error",
			"code":    "remote_write_failed",
			"message": "We could not send your details. Please try again.",
		})
	}
}

// DownloadBrochure serves the brochure once the ticket's trigger has fired
func (h *Handlers) DownloadBrochure(c *gin.Context) {
	switch h.desk.Status(c.Param("ticket")) {
	case brochure.TicketReady:
		c.FileAttachment(h.desk.Path(), "brochure.pdf")
	case brochure.TicketPending:
		c.JSON(http.StatusTooEarly, gin.H{"error": "Brochure is not ready yet"})
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown brochure ticket"})
	}
}

type signUpRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func viewOf(u *models.DemoUser) userView {
	return userView{FullName: u.FullName, Email: u.Email}
}

func (h *Handlers) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	previous := middleware.SessionID(c)
	sessionID := middleware.NewSessionID()
	user, err := h.authService.SignUp(c.Request.Context(), sessionID, req.FullName, req.Email, req.Password)
	if err != nil {
		h.authError(c, err)
		return
	}
	middleware.SetSessionID(c, sessionID)
	h.dropSession(c, previous)
	c.JSON(http.StatusCreated, gin.H{"user": viewOf(user)})
}

func (h *Handlers) LogIn(c *gin.Context) {
	var req logInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	previous := middleware.SessionID(c)
	sessionID := middleware.NewSessionID()
	user, err := h.authService.LogIn(c.Request.Context(), sessionID, req.Email, req.Password)
	if err != nil {
		h.authError(c, err)
		return
	}
	middleware.SetSessionID(c, sessionID)
	h.dropSession(c, previous)
	c.JSON(http.StatusOK, gin.H{"user": viewOf(user)})
}

func (h *Handlers) LogOut(c *gin.Context) {
	if err := h.authService.LogOut(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.authError(c, err)
		return
	}
	middleware.ClearSessionID(c)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// Me reports the current session. An orphaned session is reported as logged out.
func (h *Handlers) Me(c *gin.Context) {
	session, err := h.authService.CurrentUser(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.authError(c, err)
		return
	}
	if !session.LoggedIn() {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedIn": true, "user": viewOf(session.User)})
}

// Dashboard is the placeholder learner dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	user := middleware.DemoUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":    viewOf(user),
		"welcome": "Welcome back, " + user.FullName,
		"modules": []string{},
	})
}

func (h *Handlers) ListLeads(c *gin.Context) {
	archive, err := h.submissionService.Archive(c.Request.Context())
	if err != nil {
		h.logger.Error("error reading lead archive", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read leads"})
		return
	}
	if archive == nil {
		archive = []models.ArchivedLead{}
	}
	c.JSON(http.StatusOK, gin.H{"leads": archive})
}

// dropSession removes the pointer of a session replaced by a fresh one
func (h *Handlers) dropSession(c *gin.Context, sessionID string) {
	if err := h.authService.LogOut(c.Request.Context(), sessionID); err != nil {
		h.logger.Warn("error dropping replaced session", "error", err)
	}
}

func (h *Handlers) authError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fix the highlighted fields", "fields": verr.Fields})
	case errors.Is(err, services.ErrDuplicateAccount):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.logger.Error("demo auth failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
