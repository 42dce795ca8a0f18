package orderservice

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
)

// OrderDTO is the order service's view of an order. Money is in minor units.
type OrderDTO struct {
	ID        string     `json:"id"`
	Items     []ItemDTO  `json:"items"`
	Total     int64      `json:"total"`
	Target    TargetDTO  `json:"target"`
	Contact   ContactDTO `json:"contact"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ItemDTO struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// TargetDTO carries either the station fields or the address, selected by Kind.
type TargetDTO struct {
	Kind    string `json:"kind"`
	Station string `json:"station,omitempty"`
	Coach   string `json:"coach,omitempty"`
	Seat    string `json:"seat,omitempty"`
	Address string `json:"address,omitempty"`
}

type ContactDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ProofDTO struct {
	Kind       string    `json:"kind"`
	Value      string    `json:"value"`
	CapturedAt time.Time `json:"capturedAt"`
}

type claimRequest struct {
	AgentID string `json:"agentId"`
}

type declineRequest struct {
	Reason string `json:"reason"`
}

type statusRequest struct {
	Status string    `json:"status"`
	Proof  *ProofDTO `json:"proof,omitempty"`
}

type otpResponse struct {
	Code string `json:"code"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (d OrderDTO) toDomain() (*order.Order, error) {
	id, err := kernel.UUIDFromString(d.ID)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(d.Items))
	var itemErrs []error
	for _, it := range d.Items {
		item, itemErr := order.NewItem(it.Name, it.Quantity, kernel.Money(it.UnitPrice))
		if itemErr != nil {
			itemErrs = append(itemErrs, itemErr)
			continue
		}
		items = append(items, item)
	}
	if err = errors.Join(itemErrs...); err != nil {
		return nil, err
	}

	target, err := d.Target.toDomain()
	if err != nil {
		return nil, err
	}
	contact, err := order.NewContact(d.Contact.Name, d.Contact.Phone)
	if err != nil {
		return nil, err
	}

	return order.NewOrder(id, items, kernel.Money(d.Total), target, contact, d.CreatedAt)
}

func (d TargetDTO) toDomain() (kernel.DeliveryTarget, error) {
	kind, err := kernel.ParseTargetKind(d.Kind)
	if err != nil {
		return kernel.DeliveryTarget{}, err
	}
	if kind == kernel.StationTarget {
		return kernel.NewStationTarget(d.Station, d.Coach, d.Seat)
	}
	return kernel.NewAddressTarget(d.Address)
}

func proofFromDomain(pod *proof.ProofOfDelivery) *ProofDTO {
	if pod == nil {
		return nil
	}
	return &ProofDTO{Kind: pod.Kind().String(), Value: pod.Value(), CapturedAt: pod.CapturedAt().UTC()}
}
