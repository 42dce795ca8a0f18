package earnings

import (
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// Aggregates are recomputed from records; nothing is cached between calls.
type Aggregates struct {
	Total   kernel.Money
	Count   int
	Average kernel.Money
}

// Summarize folds the commissions of records inside w. The average is rounded
// half away from zero to whole minor units.
func Summarize(records []Record, w Window) Aggregates {
	var agg Aggregates
	for _, r := range records {
		if !w.Contains(r.RecordedAt()) {
			continue
		}
		agg.Total = agg.Total.Add(r.Commission())
		agg.Count++
	}
	if agg.Count > 0 {
		avg := decimal.NewFromInt(agg.Total.MinorUnits()).
			Div(decimal.NewFromInt(int64(agg.Count))).
			Round(0)
		agg.Average = kernel.Money(avg.IntPart())
	}
	return agg
}

// Summary is the earnings read model shown to the agent.
type Summary struct {
	Today         Aggregates
	Week          Aggregates
	Month         Aggregates
	PendingPayout kernel.Money
}
