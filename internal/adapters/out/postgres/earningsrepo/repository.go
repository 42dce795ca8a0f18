package earningsrepo

import (
	"context"
	"errors"
	"math"
	"time"

	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.EarningsRepository = (*GormEarningsRepository)(nil)

type GormEarningsRepository struct {
	db *gorm.DB
}

func NewGormEarningsRepository(db *gorm.DB) *GormEarningsRepository {
	return &GormEarningsRepository{db: db}
}

func (r *GormEarningsRepository) Add(ctx context.Context, record earnings.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewDuplicateRecordError("earnings record", record.OrderID())
		}
		return err
	}
	return nil
}

func (r *GormEarningsRepository) Exists(ctx context.Context, orderID kernel.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&RecordDTO{}).
		Where("order_id = ?", orderID.Bytes()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormEarningsRepository) ListInWindow(ctx context.Context, w earnings.Window) ([]earnings.Record, error) {
	var dtos []RecordDTO
	if err := r.db.WithContext(ctx).
		Where("recorded_at >= ? AND recorded_at < ?", w.From.UTC(), w.To.UTC()).
		Order("recorded_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]earnings.Record, 0, len(dtos))
	for _, dto := range dtos {
		rec, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *GormEarningsRepository) PendingPayout(ctx context.Context, agentID kernel.UUID) (kernel.Money, error) {
	balance, err := r.balance(r.db.WithContext(ctx), agentID)
	if err != nil {
		return 0, err
	}
	return kernel.Money(balance), nil
}

// AdjustPendingPayout locks the balance row for the rest of the transaction.
func (r *GormEarningsRepository) AdjustPendingPayout(
	ctx context.Context, agentID kernel.UUID, delta int64,
) (kernel.Money, error) {
	if err := agentID.Validate(); err != nil {
		return 0, err
	}

	db := r.db.WithContext(ctx)
	current, err := r.balance(db.Clauses(clause.Locking{Strength: "UPDATE"}), agentID)
	if err != nil {
		return 0, err
	}
	if delta < -current {
		return 0, errs.NewValueIsOutOfRangeError("pending payout adjustment", delta, -current, int64(math.MaxInt64))
	}

	next := BalanceDTO{AgentID: agentID.Bytes(), PendingPayout: current + delta, UpdatedAt: time.Now().UTC()}
	if err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "agent_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pending_payout", "updated_at"}),
	}).Create(&next).Error; err != nil {
		return 0, err
	}
	return kernel.Money(next.PendingPayout), nil
}

func (r *GormEarningsRepository) balance(db *gorm.DB, agentID kernel.UUID) (int64, error) {
	var dto BalanceDTO
	err := db.Take(&dto, "agent_id = ?", agentID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return dto.PendingPayout, nil
}
