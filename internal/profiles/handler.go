package profiles

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/pestilab/pkg/handlers"
	"github.com/JaimeStill/pestilab/pkg/routes"
)

// Entry is a profile together with its print instructions.
type Entry struct {
	Profile
	Instructions PrintInstructions `json:"instructions"`
}

func entry(p Profile) Entry {
	return Entry{Profile: p, Instructions: p.Instructions()}
}

// SelectRequest chooses a profile.
type SelectRequest struct {
	ID string `json:"id"`
}

type Handler struct {
	registry  *Registry
	selection *Selection
	logger    *slog.Logger
}

// NewHandler creates a Handler over the catalog and the current selection.
func NewHandler(registry *Registry, selection *Selection, logger *slog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		selection: selection,
		logger:    logger.With("handler", "profiles"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/profiles",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/selected", Handler: h.Selected},
			{Method: "PUT", Pattern: "/selected", Handler: h.Select},
			{Method: "GET", Pattern: "/{id}", Handler: h.Get},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list := h.registry.List()
	out := make([]Entry, len(list))
	for i, p := range list {
		out[i] = entry(p)
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, entry(p))
}

func (h *Handler) Selected(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, entry(h.selection.Current()))
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPayload)
		return
	}

	p, err := h.selection.Select(r.Context(), req.ID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, entry(p))
}
