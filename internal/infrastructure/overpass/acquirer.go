package overpass

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mgonzalezcanudas/print3dhood/internal/config"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// Acquirer implements repository.FeatureSource: it tiles the bounding
// square, queries tiles with bounded parallelism and per-tile retry,
// and merges results keyed by OSM id so the outcome is independent of
// completion order.
type Acquirer struct {
	cfg    *config.Settings
	client *Client
	log    *zap.Logger

	// BackoffUnit scales the retry backoff; tests shorten it.
	BackoffUnit time.Duration
}

// NewAcquirer creates the acquirer.
func NewAcquirer(cfg *config.Settings, client *Client, log *zap.Logger) *Acquirer {
	return &Acquirer{
		cfg:         cfg,
		client:      client,
		log:         log,
		BackoffUnit: time.Second,
	}
}

// Fetch acquires all raw features for the square of side
// 2*(radiusM+paddingM) around center. Any tile that exhausts its
// attempts fails the whole fetch with ErrUpstreamUnavailable.
func (a *Acquirer) Fetch(ctx context.Context, center model.GeoPoint, radiusM, paddingM float64) (*model.RawFeatureSet, error) {
	frame := model.NewLocalFrame(center)
	tiles := BuildTiles(center, radiusM+paddingM, a.cfg.TileSizeM)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.FetchTimeoutS)*time.Second)
	defer cancel()

	var mu sync.Mutex
	merged := map[model.FeatureKind]map[int64]model.RawFeature{
		model.KindBuilding: {},
		model.KindRoad:     {},
		model.KindPark:     {},
		model.KindWater:    {},
	}
	attempts := make([]int, len(tiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.FetchWorkers)
	for i, tile := range tiles {
		i, tile := i, tile
		g.Go(func() error {
			payload, used, err := a.fetchTile(gctx, tile)
			attempts[i] = used
			if err != nil {
				return fmt.Errorf("tile %d after %d attempts: %w", i, used, err)
			}
			features := parseTile(payload, frame)

			// First writer wins per id; identical payloads straddling
			// tile boundaries make the merge commutative.
			mu.Lock()
			for _, f := range features {
				byID := merged[f.Kind]
				if _, seen := byID[f.OSMID]; !seen {
					byID[f.OSMID] = f
				}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.log.Warn("feature fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}

	set := &model.RawFeatureSet{
		Frame:        frame,
		Buildings:    sortedFeatures(merged[model.KindBuilding]),
		Roads:        sortedFeatures(merged[model.KindRoad]),
		Parks:        sortedFeatures(merged[model.KindPark]),
		Waters:       sortedFeatures(merged[model.KindWater]),
		TileAttempts: attempts,
	}
	a.log.Info("feature fetch complete",
		zap.Int("tiles", len(tiles)),
		zap.Int("buildings", len(set.Buildings)),
		zap.Int("roads", len(set.Roads)),
		zap.Int("parks", len(set.Parks)),
		zap.Int("waters", len(set.Waters)),
	)
	return set, nil
}

// fetchTile runs the explicit bounded retry loop for one tile,
// returning the number of attempts used.
func (a *Acquirer) fetchTile(ctx context.Context, tile Tile) (*Payload, int, error) {
	query := buildQuery(tile, a.cfg.FetchTimeoutS)
	var lastErr error
	for attempt := 1; attempt <= a.cfg.RetryAttempts; attempt++ {
		payload, err := a.client.Query(ctx, query)
		if err == nil {
			return payload, attempt, nil
		}
		lastErr = err

		statusErr, ok := err.(*StatusError)
		if !ok || !statusErr.Retryable() || attempt == a.cfg.RetryAttempts {
			return nil, attempt, lastErr
		}

		// Linear backoff with jitter, honoring cancellation.
		backoff := time.Duration(attempt) * a.BackoffUnit
		backoff += time.Duration(rand.Int63n(int64(a.BackoffUnit)/4 + 1))
		a.log.Debug("retrying tile",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, attempt, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, a.cfg.RetryAttempts, lastErr
}

// sortedFeatures orders merged features by id so downstream output is
// deterministic regardless of tile completion order.
func sortedFeatures(byID map[int64]model.RawFeature) []model.RawFeature {
	out := make([]model.RawFeature, 0, len(byID))
	for _, f := range byID {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OSMID < out[j].OSMID })
	return out
}
