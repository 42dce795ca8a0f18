// Package orderrepo persists owned orders. Items and the status history are
// stored as JSONB columns; the delivery target, contact and proof are embedded.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"

	"github.com/google/uuid"
)

type OrderDTO struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	AgentID   *uuid.UUID        `gorm:"type:uuid;index"`
	Status    string            `gorm:"index"`
	Total     int64
	Items     []ItemDTO         `gorm:"type:jsonb;serializer:json"`
	Target    TargetDTO         `gorm:"embedded;embeddedPrefix:target_"`
	Contact   ContactDTO        `gorm:"embedded;embeddedPrefix:contact_"`
	History   []StatusChangeDTO `gorm:"type:jsonb;serializer:json"`
	Proof     ProofDTO          `gorm:"embedded;embeddedPrefix:proof_"`
	CreatedAt time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

type ItemDTO struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type TargetDTO struct {
	Kind    string
	Station string
	Coach   string
	Seat    string
	Address string
}

type ContactDTO struct {
	Name  string
	Phone string
}

type StatusChangeDTO struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// ProofDTO is all-null until the order is delivered.
type ProofDTO struct {
	Kind       *string
	Value      *string
	CapturedAt *time.Time
}

func fromDomain(o *order.Order) OrderDTO {
	var agentID *uuid.UUID
	if id := o.Agent(); id != nil {
		raw := id.Bytes()
		agentID = &raw
	}

	items := make([]ItemDTO, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, ItemDTO{Name: it.Name(), Quantity: it.Quantity(), UnitPrice: it.UnitPrice().MinorUnits()})
	}

	history := make([]StatusChangeDTO, 0, len(o.History()))
	for _, h := range o.History() {
		history = append(history, StatusChangeDTO{Status: h.Status.Code(), At: h.At.UTC()})
	}

	var pod ProofDTO
	if p, ok := o.Proof(); ok {
		kind, value, at := p.Kind().String(), p.Value(), p.CapturedAt().UTC()
		pod = ProofDTO{Kind: &kind, Value: &value, CapturedAt: &at}
	}

	t := o.Target()
	return OrderDTO{
		ID:      o.ID().Bytes(),
		AgentID: agentID,
		Status:  o.Status().Code(),
		Total:   o.Total().MinorUnits(),
		Items:   items,
		Target: TargetDTO{
			Kind:    t.Kind().String(),
			Station: t.Station(),
			Coach:   t.Coach(),
			Seat:    t.Seat(),
			Address: t.Address(),
		},
		Contact:   ContactDTO{Name: o.Contact().Name(), Phone: o.Contact().Phone()},
		History:   history,
		Proof:     pod,
		CreatedAt: o.CreatedAt().UTC(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	var agentID *kernel.UUID
	if dto.AgentID != nil {
		aID, agentErr := kernel.UUIDFromGoogle(*dto.AgentID)
		if agentErr != nil {
			return nil, agentErr
		}
		agentID = &aID
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		item, itemErr := order.NewItem(it.Name, it.Quantity, kernel.Money(it.UnitPrice))
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	target, err := dto.Target.toDomain()
	if err != nil {
		return nil, err
	}
	contact, err := order.NewContact(dto.Contact.Name, dto.Contact.Phone)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	history := make([]order.StatusChange, 0, len(dto.History))
	for _, h := range dto.History {
		s, statusErr := order.ParseStatus(h.Status)
		if statusErr != nil {
			return nil, statusErr
		}
		history = append(history, order.StatusChange{Status: s, At: h.At.UTC()})
	}

	pod, err := dto.Proof.toDomain()
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.RestoreParams{
		ID:        id,
		Items:     items,
		Total:     kernel.Money(dto.Total),
		Target:    target,
		Contact:   contact,
		CreatedAt: dto.CreatedAt,
		Status:    status,
		History:   history,
		AgentID:   agentID,
		Proof:     pod,
	})
}

func (t TargetDTO) toDomain() (kernel.DeliveryTarget, error) {
	kind, err := kernel.ParseTargetKind(t.Kind)
	if err != nil {
		return kernel.DeliveryTarget{}, err
	}
	if kind == kernel.StationTarget {
		return kernel.NewStationTarget(t.Station, t.Coach, t.Seat)
	}
	return kernel.NewAddressTarget(t.Address)
}

func (p ProofDTO) toDomain() (*proof.ProofOfDelivery, error) {
	if p.Kind == nil {
		return nil, nil
	}
	kind, err := proof.ParseKind(*p.Kind)
	if err != nil {
		return nil, err
	}

	var value string
	if p.Value != nil {
		value = *p.Value
	}
	var at time.Time
	if p.CapturedAt != nil {
		at = *p.CapturedAt
	}

	pod, err := proof.Restore(kind, value, at)
	if err != nil {
		return nil, err
	}
	return &pod, nil
}
