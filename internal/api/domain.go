package api

import (
	"fmt"

	"github.com/JaimeStill/pestilab/internal/config"
	"github.com/JaimeStill/pestilab/internal/density"
	"github.com/JaimeStill/pestilab/internal/exports"
	"github.com/JaimeStill/pestilab/internal/labels"
	"github.com/JaimeStill/pestilab/internal/layout"
	"github.com/JaimeStill/pestilab/internal/profiles"
	"github.com/JaimeStill/pestilab/internal/weighing"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Density   *density.Resolver
	Sessions  weighing.Sessions
	Mapper    *labels.Mapper
	Preview   *labels.Preview
	Profiles  *profiles.Registry
	Selection *profiles.Selection
	Engine    *layout.Engine
	Exporter  *exports.Exporter
	// Archive is nil when archiving is disabled.
	Archive exports.Archive
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	resolver := density.NewResolver(
		density.NewClient(cfg.Density.BaseURL, cfg.Density.TimeoutDuration()),
		density.NewMetrics(runtime.Metrics),
		runtime.Logger,
	)

	registry, err := profiles.NewRegistry(cfg.Labels.DefaultProfile)
	if err != nil {
		return nil, fmt.Errorf("profiles: %w", err)
	}

	mapper := labels.NewMapper(cfg.Labels.Location())

	exporter := exports.NewExporter(
		exports.Options{
			Title:       cfg.Exports.Title,
			Subject:     cfg.Exports.Subject,
			ChunkSize:   cfg.Exports.ChunkSize,
			Concurrency: cfg.Exports.Concurrency,
		},
		mapper.Today,
		exports.NewMetrics(runtime.Metrics),
		runtime.Logger,
	)

	var archive exports.Archive
	if cfg.Exports.ArchiveEnabled() {
		archive = exports.NewArchive(
			runtime.Database,
			runtime.Storage,
			runtime.Pagination,
			runtime.Logger,
		)
	}

	return &Domain{
		Density: resolver,
		Sessions: weighing.NewSessions(
			resolver,
			cfg.Weighing.TolerancePct,
			cfg.Weighing.SessionTTLDuration(),
			runtime.Logger,
		),
		Mapper:    mapper,
		Preview:   labels.NewPreview(),
		Profiles:  registry,
		Selection: profiles.NewSelection(registry, runtime.Settings, runtime.Logger),
		Engine:    layout.NewEngine(layout.NewMetrics(runtime.Metrics), runtime.Logger),
		Exporter:  exporter,
		Archive:   archive,
	}, nil
}

// Start restores the persisted profile selection once the infrastructure
// is up.
func (d *Domain) Start(runtime *Runtime) {
	runtime.Lifecycle.OnStartup(func() {
		p := d.Selection.Load(runtime.Lifecycle.Context())
		runtime.Logger.Info("label profile selected", "profile", p.ID)
	})
}
