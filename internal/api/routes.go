package api

import (
	"net/http"

	"github.com/JaimeStill/pestilab/internal/config"
	"github.com/JaimeStill/pestilab/internal/density"
	"github.com/JaimeStill/pestilab/internal/exports"
	"github.com/JaimeStill/pestilab/internal/labels"
	"github.com/JaimeStill/pestilab/internal/layout"
	"github.com/JaimeStill/pestilab/internal/profiles"
	"github.com/JaimeStill/pestilab/internal/weighing"
	"github.com/JaimeStill/pestilab/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	logger := runtime.Logger

	routes.Register(
		mux,
		density.NewHandler(domain.Density, logger).Routes(),
		weighing.NewHandler(
			domain.Sessions,
			domain.Density,
			cfg.Weighing.TolerancePct,
			logger,
		).Routes(),
		labels.NewHandler(domain.Mapper, logger).Routes(),
		profiles.NewHandler(domain.Profiles, domain.Selection, logger).Routes(),
		layout.NewHandler(
			domain.Engine,
			domain.Mapper,
			domain.Profiles,
			domain.Selection,
			domain.Preview,
			logger,
		).Routes(),
		exports.NewHandler(
			domain.Exporter,
			domain.Archive,
			domain.Mapper,
			runtime.Pagination,
			runtime.MaxUploadSize,
			logger,
		).Routes(),
	)
}
