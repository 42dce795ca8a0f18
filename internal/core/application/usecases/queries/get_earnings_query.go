package queries

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/pkg/guard"
)

var ErrGetEarningsQueryIsNotConstructed = errors.New(
	"GetEarningsQuery must be created via NewGetEarningsQuery constructor",
)

// GetEarningsQuery aggregates the agent's commissions over one calendar period.
type GetEarningsQuery struct {
	period earnings.Period

	guard guard.ConstructorGuard
}

// NewGetEarningsQuery accepts "today", "week" or "month"; empty means today.
func NewGetEarningsQuery(period string) (GetEarningsQuery, error) {
	if period == "" {
		period = string(earnings.Day)
	}
	p, err := earnings.ParsePeriod(period)
	if err != nil {
		return GetEarningsQuery{}, err
	}
	return GetEarningsQuery{period: p, guard: guard.NewConstructorGuard()}, nil
}

func (q GetEarningsQuery) Validate() error {
	return q.guard.Validate(ErrGetEarningsQueryIsNotConstructed)
}

func (q GetEarningsQuery) Period() earnings.Period {
	return q.period
}

type GetEarningsQueryResponse struct {
	Period earnings.Period
	earnings.Aggregates
}

type GetEarningsQueryHandler struct {
	ledger EarningsReader
}

func NewGetEarningsQueryHandler(ledger EarningsReader) GetEarningsQueryHandler {
	return GetEarningsQueryHandler{ledger: ledger}
}

func (h GetEarningsQueryHandler) Handle(ctx context.Context, query GetEarningsQuery) (GetEarningsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetEarningsQueryResponse{}, err
	}

	agg, err := h.ledger.Aggregates(ctx, query.Period())
	if err != nil {
		return GetEarningsQueryResponse{}, err
	}
	return GetEarningsQueryResponse{Period: query.Period(), Aggregates: agg}, nil
}

var ErrGetEarningsSummaryQueryIsNotConstructed = errors.New(
	"GetEarningsSummaryQuery must be created via NewGetEarningsSummaryQuery constructor",
)

// GetEarningsSummaryQuery returns today, this week, this month and the pending payout at once.
type GetEarningsSummaryQuery struct {
	guard guard.ConstructorGuard
}

func NewGetEarningsSummaryQuery() GetEarningsSummaryQuery {
	return GetEarningsSummaryQuery{guard: guard.NewConstructorGuard()}
}

func (q GetEarningsSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetEarningsSummaryQueryIsNotConstructed)
}

type GetEarningsSummaryQueryHandler struct {
	ledger EarningsReader
}

func NewGetEarningsSummaryQueryHandler(ledger EarningsReader) GetEarningsSummaryQueryHandler {
	return GetEarningsSummaryQueryHandler{ledger: ledger}
}

func (h GetEarningsSummaryQueryHandler) Handle(ctx context.Context, query GetEarningsSummaryQuery) (earnings.Summary, error) {
	if err := query.Validate(); err != nil {
		return earnings.Summary{}, err
	}
	return h.ledger.Summary(ctx)
}
