package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/deal-engine/commission"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/generic"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// ENGINE
// =============================================================================

// DefaultPreviewConcurrency bounds the goroutines PreviewAll uses.
const DefaultPreviewConcurrency = 8

// Engine wires the normalizer and the commission resolver together.
// It keeps no per-request state; one Engine serves concurrent callers.
type Engine struct {
	normalizer         *deals.Normalizer
	resolver           *commission.Resolver
	previewConcurrency int
}

// NewEngine creates an engine. A nil resolver uses the fallback multiplier;
// a nil normalizer gets deals.NewNormalizer().
func NewEngine(resolver *commission.Resolver, normalizer *deals.Normalizer) *Engine {
	if resolver == nil {
		resolver = commission.NewResolver(commission.Config{DefaultMultiplier: commission.FallbackMultiplier})
	}
	if normalizer == nil {
		normalizer = deals.NewNormalizer()
	}
	return &Engine{
		normalizer:         normalizer,
		resolver:           resolver,
		previewConcurrency: DefaultPreviewConcurrency,
	}
}

// WithPreviewConcurrency returns a copy of e using n goroutines for PreviewAll.
func (e *Engine) WithPreviewConcurrency(n int) *Engine {
	clone := *e
	if n > 0 {
		clone.previewConcurrency = n
	}
	return &clone
}

// Candidates returns the room's valid deals in presentation order. An empty
// result is a normal outcome: the room simply has nothing on offer.
func (e *Engine) Candidates(room Room) ([]deals.Deal, []deals.Rejection) {
	valid, rejected := e.normalizer.NormalizeAll(room.RawDeals)
	recordRejections(rejected)
	return valid, rejected
}

// Commission resolves the effective commission for a room of hotel.
func (e *Engine) Commission(room Room, hotel Hotel) commission.Resolution {
	res := e.resolver.ResolveWithSource(room.Commission, hotel.Commission)
	commissionSources.WithLabelValues(string(res.Source)).Inc()
	return res
}

// Quote prices the room's deal with the given ID for units rooms.
func (e *Engine) Quote(room Room, hotel Hotel, dealID generic.DealID, units int) (Quote, error) {
	candidates, _ := e.Candidates(room)
	deal, ok := deals.Find(candidates, dealID)
	if !ok {
		err := fmt.Errorf("room %s deal %s: %w", room.ID, dealID, ErrDealNotFound)
		quoteErrors.WithLabelValues(quoteErrorReason(err)).Inc()
		return Quote{}, err
	}
	return e.QuoteDeal(room, hotel, deal, units)
}

// QuoteDeal prices an already normalized deal.
func (e *Engine) QuoteDeal(room Room, hotel Hotel, deal deals.Deal, units int) (Quote, error) {
	start := time.Now()
	q, err := e.quote(room, hotel, deal, units)
	if err != nil {
		quoteErrors.WithLabelValues(quoteErrorReason(err)).Inc()
		return Quote{}, err
	}
	quoteDuration.Observe(time.Since(start).Seconds())
	quotesComputed.WithLabelValues(string(deal.Kind)).Inc()
	return q, nil
}

func (e *Engine) quote(room Room, hotel Hotel, deal deals.Deal, units int) (Quote, error) {
	if units < 1 {
		return Quote{}, fmt.Errorf("%d: %w", units, ErrInvalidUnits)
	}

	res := e.Commission(room, hotel)
	totals, err := CalculateTotals(deal, res.Rate)
	if err != nil {
		return Quote{}, err
	}
	rows, err := BuildNightlyRows(deal.Range(), totals)
	if err != nil {
		return Quote{}, fmt.Errorf("deal %s: %w", deal.ID, err)
	}

	return Quote{
		RoomID:       room.ID,
		HotelID:      hotel.ID,
		Deal:         deal,
		Units:        units,
		Commission:   res,
		Totals:       totals,
		Nights:       rows,
		BookingTotal: totals.FinalTotal.MulInt(units).Round2(),
	}, nil
}

// PreviewAll prices every candidate deal of room for a single unit,
// concurrently. Results keep candidate order. The first failure cancels
// the remaining work and is returned.
func (e *Engine) PreviewAll(ctx context.Context, room Room, hotel Hotel) ([]Quote, error) {
	candidates, _ := e.Candidates(room)
	previewCandidates.Observe(float64(len(candidates)))

	quotes := make([]Quote, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.previewConcurrency)
	for i, deal := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			q, err := e.QuoteDeal(room, hotel, deal, 1)
			if err != nil {
				return err
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}
