package pricing

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/warp/deal-engine/deals"
)

var (
	// quotesComputed counts successful quotes by deal kind.
	quotesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deal_engine_quotes_computed_total",
		Help: "Total number of quotes computed by deal kind",
	}, []string{"kind"})

	// quoteErrors counts refused or failed quotes by reason.
	quoteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deal_engine_quote_errors_total",
		Help: "Total number of quote failures by reason",
	}, []string{"reason"})

	// dealsRejected counts raw deals left out of the candidate set.
	dealsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deal_engine_deals_rejected_total",
		Help: "Total number of raw deals rejected by the normalizer",
	}, []string{"kind", "reason"})

	// commissionSources counts which input decided the commission rate.
	commissionSources = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deal_engine_commission_source_total",
		Help: "Total number of commission resolutions by winning source",
	}, []string{"source"})

	// quoteDuration tracks the time to price one deal.
	quoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deal_engine_quote_duration_seconds",
		Help:    "Time taken to compute one quote",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	// previewCandidates tracks how many deals a preview priced.
	previewCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deal_engine_preview_candidates_count",
		Help:    "Number of candidate deals priced per preview",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})
)

func recordRejections(rejected []deals.Rejection) {
	for _, r := range rejected {
		dealsRejected.WithLabelValues(string(r.Kind), rejectionReason(r.Err)).Inc()
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, deals.ErrNonPositivePrice):
		return "price"
	case errors.Is(err, deals.ErrInvalidDealDates):
		return "dates"
	case errors.Is(err, deals.ErrUnknownKind):
		return "kind"
	default:
		return "other"
	}
}

func quoteErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrDealNotFound):
		return "deal_not_found"
	case errors.Is(err, ErrInvalidUnits):
		return "invalid_units"
	case errors.Is(err, ErrInvalidStay), errors.Is(err, ErrZeroNights):
		return "invalid_stay"
	case errors.Is(err, ErrAllocationMismatch):
		return "allocation_mismatch"
	default:
		return "other"
	}
}
