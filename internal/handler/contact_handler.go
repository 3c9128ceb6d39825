package handler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"contact-service/internal/model"
	"contact-service/internal/service"
	"contact-service/internal/util"
)

// ContactHandler handles HTTP requests for contact-form operations
type ContactHandler struct {
	contactService *service.ContactService
	adminToken     string
	logger         *zap.Logger
}

// NewContactHandler creates a new contact handler. adminToken guards
// the admin listing; empty disables the check.
func NewContactHandler(contactService *service.ContactService, adminToken string, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		adminToken:     adminToken,
		logger:         logger,
	}
}

// RegisterRoutes registers all contact-form routes
func (h *ContactHandler) RegisterRoutes(router chi.Router) {
	router.Post("/api/contact", h.Submit)
	router.Get("/contact", h.ContactPage)
	router.Get("/admin/messages", h.AdminMessages)
}

// Submit handles POST /api/contact.
// Responses: 200 {"ok": true}, 400/429 {"error": "..."}.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	// A malformed body validates as an empty payload, matching the
	// legacy behavior of treating unparseable JSON as {}.
	var payload model.SubmissionPayload
	_ = json.NewDecoder(r.Body).Decode(&payload)

	clientAddr := service.ResolveClientAddr(r.Header.Get("X-Forwarded-For"), r.RemoteAddr)

	sub, err := h.contactService.Submit(ctx, &payload, clientAddr)
	if err != nil {
		var verrs service.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": verrs.Error()})
		case errors.Is(err, service.ErrThrottled):
			h.respondWithJSON(w, http.StatusTooManyRequests, map[string]string{"error": err.Error()})
		default:
			h.logger.Error("submission persistence failed",
				util.String("addr", clientAddr),
				util.ErrorField(err),
			)
			h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
	h.logger.Info("Submission accepted via HTTP",
		util.String("submission_id", sub.ID),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Submit"),
	)
}

// ContactPage handles GET /contact and serves the submission form.
func (h *ContactHandler) ContactPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := contactTmpl.Execute(w, map[string]interface{}{"Primary": primaryColor}); err != nil {
		h.logger.Error("failed to render contact page", util.ErrorField(err))
	}
}

// AdminMessages handles GET /admin/messages and renders every stored
// submission, most recent first.
func (h *ContactHandler) AdminMessages(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	messages, err := h.contactService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list submissions", util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := adminTmpl.Execute(w, map[string]interface{}{
		"Primary":  primaryColor,
		"Messages": messages,
	}); err != nil {
		h.logger.Error("failed to render admin page", util.ErrorField(err))
	}
}

// HealthCheck handles GET /health.
func (h *ContactHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "contact-service",
	})
}

func (h *ContactHandler) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return true
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}

func (h *ContactHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
