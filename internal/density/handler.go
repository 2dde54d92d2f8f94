package density

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/JaimeStill/pestilab/pkg/formatting"
	"github.com/JaimeStill/pestilab/pkg/handlers"
	"github.com/JaimeStill/pestilab/pkg/routes"
)

// Reading is the density endpoint response.
type Reading struct {
	Solvent      string  `json:"solvent"`
	TemperatureC float64 `json:"temperature_c"`
	Density      float64 `json:"density_g_per_ml"`
	Display      string  `json:"display"`
}

// Handler exposes density resolution over HTTP.
type Handler struct {
	resolver *Resolver
	logger   *slog.Logger
}

func NewHandler(resolver *Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		logger:   logger.With("handler", "density"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/density",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{solvent}/{temperature}", Handler: h.Resolve},
		},
	}
}

// Resolve returns the density for the path's solvent and temperature. A
// failed lookup still answers 200 with the fallback density.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	solvent := strings.TrimSpace(r.PathValue("solvent"))
	if solvent == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSolvent)
		return
	}

	temp, err := strconv.ParseFloat(strings.ReplaceAll(r.PathValue("temperature"), ",", "."), 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidTemperature)
		return
	}

	d := h.resolver.Resolve(r.Context(), solvent, temp)
	handlers.RespondJSON(w, http.StatusOK, Reading{
		Solvent:      solvent,
		TemperatureC: temp,
		Density:      d,
		Display:      formatting.FormatFixed(d, 4),
	})
}
