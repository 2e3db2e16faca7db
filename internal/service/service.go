package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aias00/gold-price-monitor/internal/model"
	"github.com/Aias00/gold-price-monitor/internal/series"
	"github.com/Aias00/gold-price-monitor/internal/store"
)

// ErrNoData is the only error that surfaces to consumers: the live fetch
// failed and there is no cached entry to fall back on.
var ErrNoData = errors.New("no data available")

// QuoteFetcher supplies the normalized live quote.
type QuoteFetcher interface {
	Fetch(ctx context.Context) (model.Quote, error)
}

// HistoryFetcher supplies extracted trading-history rows.
type HistoryFetcher interface {
	Fetch(ctx context.Context) ([]model.HistoryRow, error)
}

type Config struct {
	SourceKey    string
	TTL          time.Duration
	HistoryLimit int
	Unit         string
	Source       string
	// Now is the time source; defaults to time.Now.
	Now func() time.Time
}

// Service decides when to hit the network versus serve the cached series,
// and falls back to last-known-good data when a live fetch fails.
type Service struct {
	cfg     Config
	quote   QuoteFetcher
	history HistoryFetcher
	store   store.Store
}

func New(cfg Config, quote QuoteFetcher, history HistoryFetcher, st store.Store) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 60
	}
	return &Service{cfg: cfg, quote: quote, history: history, store: st}
}

// GetSeries returns the merged series, from cache when it is fresh enough
// and a refresh was not forced. Within one call the cache is read once near
// the start and written once near the end; if two calls race, the later
// write wins, which is fine because the cached value is a self-contained
// snapshot.
func (s *Service) GetSeries(ctx context.Context, forceRefresh bool) (model.SeriesData, error) {
	cached, haveCache := s.readCache(ctx)

	if !forceRefresh && haveCache && s.cfg.Now().Sub(cached.FetchedAt) < s.cfg.TTL {
		return cached.Data, nil
	}

	data, err := s.fetchLive(ctx, cached.Data.Records)
	if err != nil {
		if haveCache {
			log.Printf("[WARN] live fetch failed, serving stale cache: %v", err)
			return cached.Data, nil
		}
		return model.SeriesData{}, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	s.writeCache(ctx, data)
	return data, nil
}

// fetchLive fetches quote and history concurrently, merges and assembles
// the payload. A quote failure is fatal to the attempt; a history failure
// degrades to quote-only (the merger falls back to cachedRecords or a
// synthesized previous-close point).
func (s *Service) fetchLive(ctx context.Context, cachedRecords []model.PricePoint) (model.SeriesData, error) {
	var (
		quote model.Quote
		rows  []model.HistoryRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.quote.Fetch(gctx)
		if err != nil {
			return fmt.Errorf("fetch quote: %w", err)
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		r, err := s.history.Fetch(gctx)
		if err != nil {
			// Tolerated: the merge step works quote-only.
			log.Printf("[WARN] fetch history: %v", err)
			return nil
		}
		rows = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.SeriesData{}, err
	}

	points, err := series.Merge(quote, rows, cachedRecords, s.cfg.HistoryLimit)
	if err != nil {
		return model.SeriesData{}, fmt.Errorf("merge: %w", err)
	}

	return model.SeriesData{
		Records:    points,
		Unit:       s.cfg.Unit,
		Source:     s.cfg.Source,
		LastUpdate: quote.Timestamp,
	}, nil
}

func (s *Service) readCache(ctx context.Context) (model.CachedSeries, bool) {
	raw, ok, err := s.store.Get(ctx, s.cfg.SourceKey)
	if err != nil {
		log.Printf("[WARN] cache read: %v", err)
		return model.CachedSeries{}, false
	}
	if !ok {
		return model.CachedSeries{}, false
	}
	var cached model.CachedSeries
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Printf("[WARN] cache decode: %v", err)
		return model.CachedSeries{}, false
	}
	if cached.SourceKey != s.cfg.SourceKey || len(cached.Data.Records) == 0 {
		return model.CachedSeries{}, false
	}
	return cached, true
}

func (s *Service) writeCache(ctx context.Context, data model.SeriesData) {
	entry := model.CachedSeries{
		FetchedAt: s.cfg.Now(),
		SourceKey: s.cfg.SourceKey,
		Data:      data,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		log.Printf("[ERROR] cache encode: %v", err)
		return
	}
	if err := s.store.Set(ctx, s.cfg.SourceKey, raw); err != nil {
		log.Printf("[ERROR] cache write: %v", err)
	}
}
