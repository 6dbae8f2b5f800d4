// Package transport exposes the pool engine to UI collaborators over
// a JSON HTTP API. Authentication and session handling happen outside
// this boundary; callers are assumed to be authorized.
package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campaignkit/slotpool/internal/domain/audit"
	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/search"
	"github.com/campaignkit/slotpool/internal/domain/slot"
	"github.com/campaignkit/slotpool/internal/domain/stats"
)

const auditListLimit = 100

// Services groups the domain services the API fans out to.
type Services struct {
	Contacts *contact.Service
	Slots    *slot.Service
	Search   *search.Service
	Stats    *stats.Service
	Audit    *audit.Service
}

// Server wires HTTP handlers.
type Server struct {
	services Services
	logger   *slog.Logger
}

// NewRouter creates the API router with middleware.
func NewRouter(services Services, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	srv := &Server{services: services, logger: logger}

	r.Get("/health", srv.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/contacts/upload", srv.handleUpload)
		r.Post("/campaigns/run", srv.handleRunCampaign)
		r.Post("/labels", srv.handleAddLabel)
		r.Post("/search", srv.handleSearch)
		r.Get("/slots", srv.handleListSlots)
		r.Get("/slots/{id}", srv.handleGetSlot)
		r.Post("/slots/{id}/failed", srv.handleReconcile)
		r.Get("/dashboard", srv.handleDashboard)
		r.Get("/audit", srv.handleAudit)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type uploadRequest struct {
	Channel string   `json:"channel"`
	Values  []string `json:"values"`
	User    string   `json:"user,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Values == nil {
		writeDomainError(w, contact.ErrNoValues)
		return
	}

	channel, err := contact.ParseChannel(req.Channel)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.services.Contacts.Ingest(r.Context(), channel, req.Values, req.User)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type runCampaignRequest struct {
	Channel       string `json:"channel"`
	RequiredCount *int   `json:"required_count,omitempty"`
	Duration      int    `json:"duration,omitempty"`
	Interval      int    `json:"interval,omitempty"`
	Freshness     string `json:"freshness,omitempty"`
	Label         string `json:"label,omitempty"`
	User          string `json:"user,omitempty"`
}

func (s *Server) handleRunCampaign(w http.ResponseWriter, r *http.Request) {
	var req runCampaignRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Direct count mode wins; otherwise fall back to the legacy
	// duration/interval schedule shape.
	var required int
	if req.RequiredCount != nil {
		required = *req.RequiredCount
	} else {
		required = slot.RequiredFromSchedule(req.Duration, req.Interval)
	}
	if required <= 0 {
		writeDomainError(w, slot.ErrInvalidCount)
		return
	}

	freshness, err := slot.ParseFreshness(req.Freshness)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := s.services.Slots.Allocate(r.Context(), slot.AllocateRequest{
		Channel:       contact.Channel(req.Channel),
		RequiredCount: required,
		Filter: slot.Filter{
			Freshness: freshness,
			Label:     req.Label,
		},
		RequestedBy: req.User,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, created)
}

type reconcileRequest struct {
	Values []string `json:"values"`
	User   string   `json:"user,omitempty"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	var req reconcileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.services.Slots.Reconcile(r.Context(), slotID, req.Values, req.User)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type addLabelRequest struct {
	Channel  string `json:"channel"`
	Identity string `json:"identity"`
	Label    string `json:"label"`
	User     string `json:"user,omitempty"`
}

func (s *Server) handleAddLabel(w http.ResponseWriter, r *http.Request) {
	var req addLabelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	channel, err := contact.ParseChannel(req.Channel)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.services.Contacts.AddLabel(r.Context(), channel, req.Identity, req.Label, req.User); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.services.Search.Search(r.Context(), req.Query)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.services.Slots.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if slots == nil {
		slots = []slot.Slot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	found, err := s.services.Slots.Get(r.Context(), slotID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := s.services.Stats.Overview(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.services.Audit.Recent(r.Context(), auditListLimit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}
