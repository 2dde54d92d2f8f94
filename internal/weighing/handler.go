package weighing

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/pestilab/internal/density"
	"github.com/JaimeStill/pestilab/pkg/handlers"
	"github.com/JaimeStill/pestilab/pkg/routes"
)

// Handler exposes the calculator and weighing workbenches over HTTP.
type Handler struct {
	sessions  Sessions
	resolver  *density.Resolver
	tolerance float64
	logger    *slog.Logger
}

func NewHandler(sessions Sessions, resolver *density.Resolver, tolerancePct float64, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		resolver:  resolver,
		tolerance: tolerancePct,
		logger:    logger.With("handler", "weighing"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/weighing",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/calculate", Handler: h.Calculate},
			{Method: "POST", Pattern: "/sessions", Handler: h.CreateSession},
			{Method: "GET", Pattern: "/sessions/{id}", Handler: h.FindSession},
			{Method: "PATCH", Pattern: "/sessions/{id}", Handler: h.UpdateSession},
			{Method: "DELETE", Pattern: "/sessions/{id}", Handler: h.DeleteSession},
		},
	}
}

// Calculate evaluates a single form. Incomplete forms answer 200 with
// valid=false; the result is withheld rather than reported as an error.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPayload)
		return
	}

	d := resolveDensity(form, func(solvent string, temp float64) float64 {
		return h.resolver.Resolve(r.Context(), solvent, temp)
	})

	handlers.RespondJSON(w, http.StatusOK, Evaluate(form, d, h.tolerance))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPayload)
		return
	}

	s, err := h.sessions.Create(r.Context(), form)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s)
}

func (h *Handler) FindSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPayload)
		return
	}

	s, err := h.sessions.Find(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPayload)
		return
	}

	var patch Form
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPayload)
		return
	}

	s, err := h.sessions.Update(r.Context(), id, patch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPayload)
		return
	}

	if err := h.sessions.Delete(id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
