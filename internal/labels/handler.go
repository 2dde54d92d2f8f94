package labels

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/pestilab/pkg/handlers"
	"github.com/JaimeStill/pestilab/pkg/routes"
)

// MapRequest carries records in any upstream shape.
type MapRequest struct {
	Records []Record `json:"records"`
}

// MapResponse pairs each record's label with its export row, index aligned.
type MapResponse struct {
	Labels []Data      `json:"labels"`
	Rows   []ExportRow `json:"rows"`
}

// CodeRequest describes a new preparation needing a code.
type CodeRequest struct {
	CompoundName  string `json:"compound_name"`
	Serial        int    `json:"serial"`
	CAS           string `json:"cas"`
	Concentration string `json:"concentration"`
	Unit          string `json:"unit"`
	Date          string `json:"date"`
	PreparedBy    string `json:"prepared_by"`
}

// CodeResponse is the generated code and QR payload.
type CodeResponse struct {
	LabelCode string `json:"label_code"`
	QRData    string `json:"qr_data"`
}

// Handler exposes record normalization and code generation.
type Handler struct {
	mapper *Mapper
	logger *slog.Logger
}

func NewHandler(mapper *Mapper, logger *slog.Logger) *Handler {
	return &Handler{
		mapper: mapper,
		logger: logger.With("handler", "labels"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/labels",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/map", Handler: h.Map},
			{Method: "POST", Pattern: "/code", Handler: h.Code},
		},
	}
}

// DecodeRecords reads a MapRequest body, keeping numbers as written.
func DecodeRecords(r *http.Request) ([]Record, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req MapRequest
	if err := dec.Decode(&req); err != nil {
		return nil, ErrInvalidPayload
	}
	if len(req.Records) == 0 {
		return nil, ErrNoRecords
	}
	return req.Records, nil
}

func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	records, err := DecodeRecords(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	resp := MapResponse{
		Labels: make([]Data, len(records)),
		Rows:   make([]ExportRow, len(records)),
	}
	for i, rec := range records {
		resp.Labels[i] = h.mapper.ToLabelData(rec)
		resp.Rows[i] = h.mapper.ToExportRow(rec)
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) Code(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPayload)
		return
	}
	if req.Serial < 1 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSerial)
		return
	}

	if req.Date == "" {
		req.Date = h.mapper.Today()
	}
	if req.Unit == "" {
		req.Unit = "ppm"
	}

	code := Code(req.CompoundName, req.Serial)
	handlers.RespondJSON(w, http.StatusOK, CodeResponse{
		LabelCode: code,
		QRData: QRPayload(QRFields{
			Code:          code,
			Name:          req.CompoundName,
			CAS:           req.CAS,
			Concentration: req.Concentration,
			Unit:          req.Unit,
			Date:          req.Date,
			PreparedBy:    req.PreparedBy,
		}),
	})
}
