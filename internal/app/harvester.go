package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/bitbucket-harvester/internal/config"
	"github.com/samvad-hq/bitbucket-harvester/internal/harvest"
	"github.com/samvad-hq/bitbucket-harvester/internal/logger"
	"github.com/samvad-hq/bitbucket-harvester/internal/storage"
	"github.com/samvad-hq/bitbucket-harvester/pkg/publishers"
	"github.com/samvad-hq/bitbucket-harvester/pkg/queries"
)

// Harvester represents the Bitbucket harvester runtime. It runs the configured
// queries on an interval, publishing changed payloads through the fanout.
type Harvester struct {
	cfg             *config.Config
	queryReg        *queries.Registry
	fanout          *publishers.Fanout
	service         *harvest.Service
	harvestInterval time.Duration
	log             logger.Logger
	store           storage.Store
}

// NewHarvester builds a harvester runtime from config files.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	queryReg, err := queries.LoadRegistry(cfg.QueriesFile)
	if err != nil {
		return nil, fmt.Errorf("load queries registry: %w", err)
	}
	queryIDs := make([]string, 0, len(queryReg.All()))
	for _, q := range queryReg.All() {
		queryIDs = append(queryIDs, q.ID)
	}
	log.InfoObj("queries registry loaded", "queries_meta", map[string]any{
		"count": len(queryIDs),
		"ids":   queryIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		RecordTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"record_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	service := harvest.NewService(queries.NewDispatcher(client), fanout, log, store)

	return &Harvester{
		cfg:             cfg,
		queryReg:        queryReg,
		fanout:          fanout,
		service:         service,
		harvestInterval: cfg.HarvestInterval,
		log:             log,
		store:           store,
	}, nil
}

// Run starts the harvest loop until the context is cancelled.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.service == nil {
		return fmt.Errorf("harvester is not initialized")
	}
	defer h.close()

	qs := h.queryReg.Enabled()
	if len(qs) == 0 {
		h.log.WarnObj("no queries enabled; harvester idle", "queries_file", h.cfg.QueriesFile)
		<-ctx.Done()
		return ctx.Err()
	}

	h.log.InfoObj("harvester loop starting", "harvester_state", map[string]any{
		"queries_count":    len(qs),
		"publishers_count": h.fanout.Size(),
		"harvest_interval": h.harvestInterval.String(),
	})

	if err := h.runOnce(ctx, qs); err != nil {
		h.log.ErrorObj("initial harvest failed", "error", err)
	}

	ticker := time.NewTicker(h.harvestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := h.runOnce(ctx, qs); err != nil {
				h.log.ErrorObj("scheduled harvest failed", "error", err)
			}
		}
	}
}

// runOnce performs a single harvest pass across all enabled queries.
func (h *Harvester) runOnce(ctx context.Context, qs []queries.Query) error {
	start := time.Now()
	h.log.InfoObj("harvest started", "harvest_meta", map[string]any{
		"queries_count": len(qs),
		"started_at":    start.UTC(),
	})
	res, err := h.service.Run(ctx, qs)
	h.log.InfoObj("harvest completed", "harvest_meta", map[string]any{
		"queries_count": res.Queries,
		"published":     res.Published,
		"unchanged":     res.Unchanged,
		"failed":        res.Failed,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return err
}

// close releases the store and publishers, logging any errors encountered.
func (h *Harvester) close() {
	if h == nil {
		return
	}
	if h.store != nil {
		if err := h.store.Close(); err != nil {
			h.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := h.fanout.Close(); err != nil {
		h.log.ErrorObj("publishers close failed", "error", err)
	}
}
