package layout

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/pestilab/internal/labels"
	"github.com/JaimeStill/pestilab/internal/profiles"
	"github.com/JaimeStill/pestilab/pkg/handlers"
	"github.com/JaimeStill/pestilab/pkg/routes"
)

// RenderRequest asks for one record laid out on a profile. An empty
// ProfileID uses the selected profile.
type RenderRequest struct {
	Record    labels.Record `json:"record"`
	ProfileID string        `json:"profile_id"`
}

// PreviewState reports the preview container.
type PreviewState struct {
	Open bool         `json:"open"`
	Data *labels.Data `json:"data,omitempty"`
}

// Handler serves label rendering and the label preview.
type Handler struct {
	engine    *Engine
	mapper    *labels.Mapper
	registry  *profiles.Registry
	selection *profiles.Selection
	preview   *labels.Preview
	logger    *slog.Logger
}

// NewHandler creates a Handler that renders with engine.
func NewHandler(
	engine *Engine,
	mapper *labels.Mapper,
	registry *profiles.Registry,
	selection *profiles.Selection,
	preview *labels.Preview,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		engine:    engine,
		mapper:    mapper,
		registry:  registry,
		selection: selection,
		preview:   preview,
		logger:    logger.With("handler", "layout"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/labels",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/render", Handler: h.Render},
			{Method: "POST", Pattern: "/layout", Handler: h.Layout},
		},
		Children: []routes.Group{
			{
				Prefix: "/preview",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.PreviewCurrent},
					{Method: "POST", Pattern: "", Handler: h.PreviewOpen},
					{Method: "DELETE", Pattern: "", Handler: h.PreviewClose},
					{Method: "GET", Pattern: "/print", Handler: h.PreviewPrint},
				},
			},
		},
	}
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	l, err := h.layoutFor(r)
	if err != nil {
		handlers.RespondError(w, h.logger, statusFor(err), err)
		return
	}
	h.writeHTML(w, l)
}

func (h *Handler) Layout(w http.ResponseWriter, r *http.Request) {
	l, err := h.layoutFor(r)
	if err != nil {
		handlers.RespondError(w, h.logger, statusFor(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, l)
}

func (h *Handler) PreviewCurrent(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.previewState())
}

func (h *Handler) PreviewOpen(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decode(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	data := h.mapper.ToLabelData(req.Record)
	h.preview.OpenWith(&data)
	handlers.RespondJSON(w, http.StatusOK, h.previewState())
}

func (h *Handler) PreviewClose(w http.ResponseWriter, r *http.Request) {
	h.preview.Close()
	w.WriteHeader(http.StatusNoContent)
}

// PreviewPrint renders the open preview on the selected profile.
func (h *Handler) PreviewPrint(w http.ResponseWriter, r *http.Request) {
	data, open := h.preview.Current()
	if !open {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNoPreview)
		return
	}
	h.writeHTML(w, h.engine.Render(data, h.selection.Current()))
}

func (h *Handler) previewState() PreviewState {
	data, open := h.preview.Current()
	if !open {
		return PreviewState{}
	}
	return PreviewState{Open: true, Data: &data}
}

func (h *Handler) layoutFor(r *http.Request) (Layout, error) {
	var req RenderRequest
	if err := decode(r, &req); err != nil {
		return Layout{}, err
	}

	p := h.selection.Current()
	if req.ProfileID != "" {
		var err error
		if p, err = h.registry.Get(req.ProfileID); err != nil {
			return Layout{}, err
		}
	}

	return h.engine.Render(h.mapper.ToLabelData(req.Record), p), nil
}

func (h *Handler) writeHTML(w http.ResponseWriter, l Layout) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, l); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func decode(r *http.Request, req *RenderRequest) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(req); err != nil || req.Record == nil {
		return ErrInvalidPayload
	}
	return nil
}

func statusFor(err error) int {
	if s := profiles.MapHTTPStatus(err); s != http.StatusInternalServerError {
		return s
	}
	return MapHTTPStatus(err)
}
