package queries

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
)

// OrderResponse is the read model of an order shown to the agent.
type OrderResponse struct {
	ID        kernel.UUID
	Status    order.Status
	Total     kernel.Money
	Items     []ItemResponse
	Target    kernel.DeliveryTarget
	Contact   ContactResponse
	CreatedAt time.Time
	History   []order.StatusChange
	Next      *order.Status
	Proof     *ProofResponse
}

type ItemResponse struct {
	Name      string
	Quantity  int
	UnitPrice kernel.Money
}

type ContactResponse struct {
	Name  string
	Phone string
}

type ProofResponse struct {
	Kind       string
	Value      string
	CapturedAt time.Time
}

// NewOrderResponse maps an order snapshot. OTP proof values are masked.
func NewOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID(),
		Status:    o.Status(),
		Total:     o.Total(),
		Target:    o.Target(),
		Contact:   ContactResponse{Name: o.Contact().Name(), Phone: o.Contact().Phone()},
		CreatedAt: o.CreatedAt(),
		History:   o.History(),
	}
	for _, item := range o.Items() {
		resp.Items = append(resp.Items, ItemResponse{
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}
	if next, ok := o.NextStatus(); ok {
		resp.Next = &next
	}
	if pod, ok := o.Proof(); ok {
		value := pod.Value()
		if pod.Kind() == proof.OTP {
			value = "******"
		}
		resp.Proof = &ProofResponse{Kind: pod.Kind().String(), Value: value, CapturedAt: pod.CapturedAt()}
	}
	return resp
}
