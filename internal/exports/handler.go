package exports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/pestilab/internal/labels"
	"github.com/JaimeStill/pestilab/pkg/handlers"
	"github.com/JaimeStill/pestilab/pkg/pagination"
	"github.com/JaimeStill/pestilab/pkg/routes"
)

// Request carries the rows to export, either already flattened or as raw
// records to be mapped. Rows take precedence when both are present.
type Request struct {
	Rows    []labels.ExportRow `json:"rows"`
	Records []labels.Record    `json:"records"`
	Formats []string           `json:"formats,omitempty"`
}

// BundleResult lists the archived files of a bundle export.
type BundleResult struct {
	Exports []*Record `json:"exports"`
}

// Handler serves export downloads and the export archive.
type Handler struct {
	exporter      *Exporter
	archive       Archive
	mapper        *labels.Mapper
	pagination    pagination.Config
	maxUploadSize int64
	logger        *slog.Logger
}

// NewHandler creates a Handler. archive may be nil, which disables the
// archive endpoints.
func NewHandler(
	exporter *Exporter,
	archive Archive,
	mapper *labels.Mapper,
	pagination pagination.Config,
	maxUploadSize int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		exporter:      exporter,
		archive:       archive,
		mapper:        mapper,
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("handler", "exports"),
	}
}

// Routes returns the export and archive routes under /exports.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/exports",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "/bundle", Handler: h.Bundle},
			{Method: "POST", Pattern: "/import", Handler: h.Import},
			{Method: "POST", Pattern: "/{format}", Handler: h.Export},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// Export generates one file and returns it as a download. With an archive
// configured the file is archived too and its id is sent in X-Export-Id; a
// failed archive write does not block the download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := ParseFormat(r.PathValue("format"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	rows, _, err := h.decode(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	artifact, err := h.exporter.Export(r.Context(), format, rows)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if h.archive != nil {
		if rec, err := h.archive.Save(r.Context(), artifact); err != nil {
			h.logger.Warn("export not archived", "filename", artifact.Filename, "error", err)
		} else {
			w.Header().Set("X-Export-Id", rec.ID.String())
		}
	}

	handlers.RespondAttachment(w, artifact.Filename, artifact.ContentType, artifact.Data)
}

// Bundle generates several formats concurrently and archives them all.
func (h *Handler) Bundle(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.respondError(w, ErrArchiveDisabled)
		return
	}

	rows, names, err := h.decode(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	formats := Formats
	if len(names) > 0 {
		formats = make([]Format, len(names))
		for i, n := range names {
			if formats[i], err = ParseFormat(n); err != nil {
				h.respondError(w, err)
				return
			}
		}
	}

	artifacts, err := h.exporter.Bundle(r.Context(), formats, rows)
	if err != nil {
		h.respondError(w, err)
		return
	}

	result := BundleResult{Exports: make([]*Record, 0, len(artifacts))}
	for _, a := range artifacts {
		rec, err := h.archive.Save(r.Context(), a)
		if err != nil {
			h.discard(r.Context(), result.Exports)
			h.respondError(w, err)
			return
		}
		result.Exports = append(result.Exports, rec)
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// discard removes the records saved by a bundle that did not complete, so
// a failed bundle leaves nothing in the archive.
func (h *Handler) discard(ctx context.Context, saved []*Record) {
	ctx = context.WithoutCancel(ctx)
	for _, rec := range saved {
		if err := h.archive.Delete(ctx, rec.ID); err != nil {
			h.logger.Error("bundle rollback failed", "id", rec.ID, "filename", rec.Filename, "error", err)
		}
	}
}

// Import reads an uploaded XLSX workbook and returns its rows mapped for
// export.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, ErrInvalidPayload)
		return
	}
	defer file.Close()

	records, err := ReadRecords(file)
	if err != nil {
		h.respondError(w, err)
		return
	}

	rows := make([]labels.ExportRow, len(records))
	for i, rec := range records {
		rows[i] = h.mapper.ToExportRow(rec)
	}

	handlers.RespondJSON(w, http.StatusOK, Request{Rows: rows})
}

// List returns a page of archived exports.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.respondError(w, ErrArchiveDisabled)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.archive.List(r.Context(), page, filters)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns the metadata of one archived export.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.archiveID(w, r)
	if !ok {
		return
	}

	rec, err := h.archive.Find(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Download streams an archived export as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.archiveID(w, r)
	if !ok {
		return
	}

	rec, body, err := h.archive.Open(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(rec.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("download interrupted", "id", id, "error", err)
	}
}

// Delete removes an archived export and its stored file.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.archiveID(w, r)
	if !ok {
		return
	}

	if err := h.archive.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) archiveID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if h.archive == nil {
		h.respondError(w, ErrArchiveDisabled)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, ErrInvalidPayload)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(r *http.Request) ([]labels.ExportRow, []string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, nil, ErrInvalidPayload
	}

	if len(req.Rows) > 0 {
		return req.Rows, req.Formats, nil
	}

	rows := make([]labels.ExportRow, len(req.Records))
	for i, rec := range req.Records {
		rows[i] = h.mapper.ToExportRow(rec)
	}
	return rows, req.Formats, nil
}

// respondError sends export failures as a generic notice and everything
// else with its own message.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if errors.Is(err, ErrExportFailed) && status == http.StatusInternalServerError {
		handlers.RespondMessage(w, h.logger, status, ErrExportFailed.Error(), err)
		return
	}
	handlers.RespondError(w, h.logger, status, err)
}
