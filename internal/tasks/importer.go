package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 4
	MaxWorkers       = 10
	DefaultRateLimit = 5.0
)

// CardCreator creates a card through the API. [*apiclient.Client] implements it.
type CardCreator interface {
	CreateCard(ctx context.Context, req models.CreateCardRequest) (*models.Card, error)
}

// CardCacher stores cards locally.
type CardCacher interface {
	Upsert(cards []models.Card) error
}

// ImportOpts contains configuration for bulk imports.
type ImportOpts struct {
	Workers   int     // Concurrent requests (default 4, max 10)
	RateLimit float64 // Requests per second (default 5)
}

// ImportResult is the outcome for one input card. Skipped is set when the batch stopped before the card was sent.
type ImportResult struct {
	Index   int
	Request models.CreateCardRequest
	Card    *models.Card
	Error   error
	Skipped bool
}

// ImportReport summarizes a batch. Results are in input order.
type ImportReport struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Results   []ImportResult
	StartedAt time.Time
	Duration  time.Duration
}

// Cards returns the cards created by the batch.
func (r *ImportReport) Cards() []models.Card {
	cards := make([]models.Card, 0, r.Succeeded)
	for _, res := range r.Results {
		if res.Card != nil {
			cards = append(cards, *res.Card)
		}
	}
	return cards
}

// Importer creates cards in bulk.
type Importer struct {
	api    CardCreator
	cache  CardCacher
	opts   ImportOpts
	logger *log.Logger
}

// NewImporter creates an [Importer]. cache and logger may be nil.
func NewImporter(api CardCreator, cache CardCacher, opts ImportOpts, logger *log.Logger) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Workers > MaxWorkers {
		opts.Workers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Importer{
		api:    api,
		cache:  cache,
		opts:   opts,
		logger: shared.WithLogger(logger, "component", "importer"),
	}
}

// Run creates every card in reqs.
//
// The returned error is non-nil only when the batch was cut short by an expired session or by ctx;
// the report is returned in every case.
func (i *Importer) Run(ctx context.Context, progress chan<- ProgressUpdate, reqs []models.CreateCardRequest) (*ImportReport, error) {
	report := &ImportReport{
		BatchID:   shared.GenerateID(),
		Total:     len(reqs),
		Results:   make([]ImportResult, len(reqs)),
		StartedAt: time.Now(),
	}
	for idx, req := range reqs {
		report.Results[idx] = ImportResult{Index: idx, Request: req, Skipped: true}
	}

	logger := i.logger.With("batch", report.BatchID)
	logger.Info("starting import", "cards", len(reqs), "workers", i.opts.Workers, "rate", i.opts.RateLimit)
	sendProgress(progress, startImportUpdate(len(reqs), report.BatchID))

	limiter := rate.NewLimiter(rate.Limit(i.opts.RateLimit), 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.opts.Workers)

	var completed atomic.Int32
	total := len(reqs)

	for idx, req := range reqs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return nil
			}

			card, err := i.api.CreateCard(gctx, req)
			step := int(completed.Add(1))

			res := &report.Results[idx]
			res.Skipped = false
			res.Card = card
			res.Error = err

			if err != nil {
				logger.Warn("card import failed", "index", idx, "error", err)
				sendProgress(progress, cardFailedUpdate(step, total, req, err))
				if errors.Is(err, shared.ErrNotAuthenticated) {
					return err
				}
				return nil
			}

			sendProgress(progress, cardCreatedUpdate(step, total, card))
			return nil
		})
	}

	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	for _, res := range report.Results {
		switch {
		case res.Skipped:
			report.Skipped++
		case res.Error != nil:
			report.Failed++
		default:
			report.Succeeded++
		}
	}
	report.Duration = time.Since(report.StartedAt)

	if i.cache != nil && report.Succeeded > 0 {
		sendProgress(progress, cacheUpdate(report.Succeeded))
		if err := i.cache.Upsert(report.Cards()); err != nil {
			logger.Warn("failed to cache imported cards", "error", err)
		}
	}

	logger.Info("import finished",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", report.Duration,
	)

	if runErr != nil {
		return report, fmt.Errorf("import stopped after %d of %d cards: %w", report.Succeeded+report.Failed, report.Total, runErr)
	}
	return report, nil
}
