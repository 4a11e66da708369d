package worker

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/precifica/backend/internal/domain"
	"github.com/precifica/backend/internal/observability"
)

// Importer runs the ingestion pipeline for one queued XML document.
type Importer interface {
	ImportXML(ctx context.Context, xmlData []byte, params *domain.PricingParameters) (*domain.Invoice, []domain.PricedProduct, error)
}

// Ingestor consumes XML documents from the ingestion queue one at a time and
// runs each through parse, pricing and persistence. A malformed document
// fails its own job and never stops the loop.
type Ingestor struct {
	queue    domain.IngestionQueue
	importer Importer
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// NewIngestor creates an ingestion worker. ratePerSecond throttles how many
// jobs are started per second; burst allows short spikes after idle periods.
func NewIngestor(queue domain.IngestionQueue, importer Importer, ratePerSecond float64, burst int, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		queue:    queue,
		importer: importer,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		log:      log.With().Str("component", "ingestor").Logger(),
	}
}

// Run consumes the queue until the context is cancelled.
func (w *Ingestor) Run(ctx context.Context) error {
	w.log.Info().Msg("ingestion worker started")

	for {
		if err := w.limiter.Wait(ctx); err != nil {
			w.log.Info().Msg("ingestion worker stopped")
			return ctx.Err()
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error().Err(err).Msg("dequeue failed")
			continue
		}
		if job == nil {
			continue
		}

		w.process(ctx, *job)
	}
}

func (w *Ingestor) process(ctx context.Context, job domain.IngestJob) {
	invoice, priced, err := w.importer.ImportXML(ctx, []byte(job.XML), nil)
	if err != nil {
		observability.InvoicesFailed.Inc()

		if errors.Is(err, domain.ErrMalformedInvoice) {
			w.log.Warn().Str("job", job.ID).Err(err).Msg("malformed invoice, job marked failed")
		} else {
			w.log.Error().Str("job", job.ID).Err(err).Msg("ingestion failed, job marked failed")
		}
		if markErr := w.queue.MarkFailed(ctx, job, err.Error()); markErr != nil {
			w.log.Error().Str("job", job.ID).Err(markErr).Msg("could not mark job failed")
		}
		return
	}

	observability.InvoicesParsed.Inc()
	observability.ProductsPriced.Add(float64(len(priced)))

	w.log.Info().
		Str("job", job.ID).
		Str("invoice", invoice.Key).
		Int("items", invoice.ItemCount).
		Msg("invoice ingested")
}
