package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// Wire models mirror the schemas of openapi.yaml. Money is in minor units.

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Item struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type Target struct {
	Kind    string `json:"kind"`
	Station string `json:"station,omitempty"`
	Coach   string `json:"coach,omitempty"`
	Seat    string `json:"seat,omitempty"`
	Address string `json:"address,omitempty"`
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type StatusChange struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type Proof struct {
	Kind       string    `json:"kind"`
	Value      string    `json:"value"`
	CapturedAt time.Time `json:"capturedAt"`
}

type Order struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Total     int64          `json:"total"`
	Items     []Item         `json:"items"`
	Target    Target         `json:"target"`
	Contact   Contact        `json:"contact"`
	CreatedAt time.Time      `json:"createdAt"`
	History   []StatusChange `json:"history"`
	Next      *string        `json:"next,omitempty"`
	Proof     *Proof         `json:"proof,omitempty"`
}

type Offer struct {
	Order            Order     `json:"order"`
	OfferedAt        time.Time `json:"offeredAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int       `json:"remainingSeconds"`
}

type DeclineRequest struct {
	Reason string `json:"reason"`
}

type Evidence struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type StatusRequest struct {
	Status string    `json:"status,omitempty"`
	Proof  *Evidence `json:"proof,omitempty"`
}

type Notification struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type Aggregates struct {
	Total   int64 `json:"total"`
	Count   int   `json:"count"`
	Average int64 `json:"average"`
}

type Earnings struct {
	Window string `json:"window"`
	Aggregates
}

type EarningsSummary struct {
	Today         Aggregates `json:"today"`
	Week          Aggregates `json:"week"`
	Month         Aggregates `json:"month"`
	PendingPayout int64      `json:"pendingPayout"`
}

type SettlementRequest struct {
	Amount int64 `json:"amount"`
}

type Balance struct {
	PendingPayout int64 `json:"pendingPayout"`
}

func toOrder(r queries.OrderResponse) Order {
	out := Order{
		ID:        r.ID.String(),
		Status:    r.Status.Code(),
		Total:     r.Total.MinorUnits(),
		Items:     make([]Item, 0, len(r.Items)),
		Target:    toTarget(r.Target),
		Contact:   Contact{Name: r.Contact.Name, Phone: r.Contact.Phone},
		CreatedAt: r.CreatedAt,
		History:   make([]StatusChange, 0, len(r.History)),
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, Item{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice.MinorUnits()})
	}
	for _, h := range r.History {
		out.History = append(out.History, StatusChange{Status: h.Status.Code(), At: h.At})
	}
	if r.Next != nil {
		next := r.Next.Code()
		out.Next = &next
	}
	if r.Proof != nil {
		out.Proof = &Proof{Kind: r.Proof.Kind, Value: r.Proof.Value, CapturedAt: r.Proof.CapturedAt}
	}
	return out
}

func toTarget(t kernel.DeliveryTarget) Target {
	return Target{
		Kind:    t.Kind().String(),
		Station: t.Station(),
		Coach:   t.Coach(),
		Seat:    t.Seat(),
		Address: t.Address(),
	}
}

func toAggregates(a earnings.Aggregates) Aggregates {
	return Aggregates{Total: a.Total.MinorUnits(), Count: a.Count, Average: a.Average.MinorUnits()}
}

// parseTargetStatus maps an optional wire status; empty means the next status.
func parseTargetStatus(s string) (order.Status, error) {
	if s == "" {
		return order.Unknown, nil
	}
	return order.ParseStatus(s)
}
