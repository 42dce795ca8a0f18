// Package earningsrepo persists booked earnings records and the agent's
// pending payout balance.
package earningsrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type RecordDTO struct {
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Gross      int64
	Commission int64
	RecordedAt time.Time `gorm:"index"`
}

func (RecordDTO) TableName() string {
	return "earnings_records"
}

type BalanceDTO struct {
	AgentID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PendingPayout int64
	UpdatedAt     time.Time
}

func (BalanceDTO) TableName() string {
	return "agent_balances"
}

func fromDomain(r earnings.Record) RecordDTO {
	return RecordDTO{
		OrderID:    r.OrderID().Bytes(),
		Gross:      r.Gross().MinorUnits(),
		Commission: r.Commission().MinorUnits(),
		RecordedAt: r.RecordedAt().UTC(),
	}
}

func toDomain(dto RecordDTO) (earnings.Record, error) {
	id, err := kernel.UUIDFromGoogle(dto.OrderID)
	if err != nil {
		return earnings.Record{}, err
	}
	return earnings.NewRecord(id, kernel.Money(dto.Gross), kernel.Money(dto.Commission), dto.RecordedAt)
}
