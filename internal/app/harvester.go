package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/briefing-harvester/internal/archive"
	"github.com/Adda-Baaj/briefing-harvester/internal/config"
	"github.com/Adda-Baaj/briefing-harvester/internal/crawler"
	"github.com/Adda-Baaj/briefing-harvester/internal/csvsink"
	"github.com/Adda-Baaj/briefing-harvester/internal/logger"
	"github.com/Adda-Baaj/briefing-harvester/internal/storage"
	"github.com/Adda-Baaj/briefing-harvester/internal/translate"
	"github.com/Adda-Baaj/briefing-harvester/pkg/httpclient"
	"github.com/Adda-Baaj/briefing-harvester/pkg/publishers"
	"github.com/Adda-Baaj/briefing-harvester/pkg/translators"
)

const sourceName = "china-briefing"

// csvArchiver copies the CSV somewhere durable after a pass.
type csvArchiver interface {
	Upload(ctx context.Context, filePath string) (string, error)
}

// Harvester represents the news harvester runtime. It owns the crawl loop and
// the resources (store, publishers) the crawler writes through.
type Harvester struct {
	cfg           *config.Config
	fanout        *publishers.Fanout
	crawlService  *crawler.Service
	crawlInterval time.Duration
	log           logger.Logger
	store         storage.Store
	archiver      csvArchiver
}

// NewHarvester builds a harvester runtime from config.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	client := httpclient.NewRestyClient(httpclient.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	scraper := crawler.NewScraper(client, crawler.ScraperOptions{
		BaseURL:      cfg.BaseURL,
		Category:     cfg.NewsCategory,
		RequestDelay: cfg.RequestDelay,
	}, log)

	var batchTranslator crawler.BatchTranslator
	if cfg.TranslateEnabled {
		provider, err := translators.DefaultRegistry().Build(translators.Config{
			Type:      cfg.TranslatorType,
			URL:       cfg.TranslatorURL,
			APIKey:    cfg.TranslatorAPIKey,
			Timeout:   cfg.TranslatorTimeout,
			UserAgent: cfg.UserAgent,
		})
		if err != nil {
			return nil, fmt.Errorf("build translator: %w", err)
		}
		batchTranslator = translate.New(provider, translate.Options{
			TargetLang:  cfg.TargetLang,
			ChunkSize:   cfg.ChunkSize,
			Concurrency: cfg.TranslateConcurrency,
		}, log)
		log.InfoObj("translator initialized", "translator_config", map[string]any{
			"type":        provider.Name(),
			"target_lang": cfg.TargetLang,
			"chunk_size":  cfg.ChunkSize,
			"concurrency": cfg.TranslateConcurrency,
		})
	}

	sink := csvsink.New(cfg.CSVPath, cfg.TranslateEnabled)

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
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
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.StoragePath(), storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.StoragePath(),
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
		"skip_seen":                cfg.SkipSeen,
	})

	var archiver csvArchiver
	if cfg.ArchiveEnabled() {
		uploader, err := archive.New(ctx, archive.Options{
			Endpoint:  cfg.ArchiveEndpoint,
			AccessKey: cfg.ArchiveAccessKey,
			SecretKey: cfg.ArchiveSecretKey,
			Bucket:    cfg.ArchiveBucket,
			Prefix:    cfg.ArchivePrefix,
			UseSSL:    cfg.ArchiveUseSSL,
		}, log)
		if err != nil {
			_ = store.Close()
			_ = fanout.Close()
			return nil, fmt.Errorf("init archive: %w", err)
		}
		archiver = uploader
	}

	processor := crawler.NewPageProcessor(scraper, batchTranslator, sink, store, fanout, crawler.Settings{
		Country:  cfg.Country,
		Category: cfg.NewsCategory,
		Source:   sourceName,
		SkipSeen: cfg.SkipSeen,
	}, log)

	return &Harvester{
		cfg:           cfg,
		fanout:        fanout,
		crawlService:  crawler.NewService(processor, log),
		crawlInterval: cfg.CrawlInterval,
		log:           log,
		store:         store,
		archiver:      archiver,
	}, nil
}

// Run performs one crawl pass, or repeats it every crawl interval until the
// context is cancelled when an interval is configured.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.crawlService == nil {
		return fmt.Errorf("harvester is not initialized")
	}
	defer h.close()

	h.log.InfoObj("harvester run starting", "harvester_state", map[string]any{
		"start_page":       h.cfg.StartPage,
		"end_page":         h.cfg.EndPage,
		"csv_path":         h.cfg.CSVPath,
		"translate":        h.cfg.TranslateEnabled,
		"publishers_count": h.fanout.Size(),
		"crawl_interval":   h.crawlInterval.String(),
	})

	if h.crawlInterval <= 0 {
		return h.runOnce(ctx)
	}

	if err := h.runOnce(ctx); err != nil {
		h.log.ErrorObj("initial crawl failed", "error", err.Error())
	}

	ticker := time.NewTicker(h.crawlInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := h.runOnce(ctx); err != nil {
				h.log.ErrorObj("scheduled crawl failed", "error", err.Error())
			}
		}
	}
}

// runOnce crawls the configured page range once.
func (h *Harvester) runOnce(ctx context.Context) error {
	start := time.Now()
	err := h.crawlService.Run(ctx, h.cfg.StartPage, h.cfg.EndPage)
	h.log.InfoObj("crawl completed", "crawl_meta", map[string]any{
		"start_page": h.cfg.StartPage,
		"end_page":   h.cfg.EndPage,
		"elapsed_ms": time.Since(start).Milliseconds(),
		"failed":     err != nil,
	})
	h.archive(ctx)
	return err
}

// archive uploads the CSV when an archive is configured. Failures are logged only.
func (h *Harvester) archive(ctx context.Context) {
	if h.archiver == nil {
		return
	}
	if _, err := h.archiver.Upload(ctx, h.cfg.CSVPath); err != nil {
		h.log.ErrorObj("csv archive failed", "archive_error", map[string]any{
			"path":  h.cfg.CSVPath,
			"error": err.Error(),
		})
	}
}

// close releases the store and publisher connections, logging any errors.
func (h *Harvester) close() {
	if h.store != nil {
		if err := h.store.Close(); err != nil {
			h.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
	if err := h.fanout.Close(); err != nil {
		h.log.ErrorObj("publishers close failed", "error", err.Error())
	}
}
