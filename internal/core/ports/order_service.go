// Package ports defines the outbound contracts of the fulfillment core: the remote
// order service, persistence and the notification fan-out. Adapters implement them;
// application components depend only on these interfaces.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
)

// OrderService is the remote order service, the sole arbiter of which agent wins an order.
//
// Error contract:
//   - ClaimOrder returns errs.ConflictError when the order is already taken or withdrawn (HTTP 409)
//   - transport failures and 5xx responses are errs.DispatchUnavailableError
//   - UpdateOrderStatus returns errs.StateError when the service rejects the transition
//   - VerifyOTP returns errs.VerificationError when the service rejects the code
type OrderService interface {
	// FetchOpenOffers returns the Pending orders currently offered to the agent.
	FetchOpenOffers(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error)

	// ClaimOrder is a remote compare-and-swap: it succeeds for exactly one agent per order.
	ClaimOrder(ctx context.Context, orderID, agentID kernel.UUID) error

	// DeclineOrder releases the order back to the pool with a reason.
	DeclineOrder(ctx context.Context, orderID kernel.UUID, reason string) error

	// UpdateOrderStatus reports a lifecycle transition; pod is set only for Delivered.
	UpdateOrderStatus(ctx context.Context, orderID kernel.UUID, status order.Status, pod *proof.ProofOfDelivery) error

	OTPIssuer

	// VerifyOTP asks the service to confirm a code the customer read out.
	VerifyOTP(ctx context.Context, orderID kernel.UUID, code string) error
}

// OTPIssuer generates a one-time delivery code and sends it to the customer out of band.
type OTPIssuer interface {
	GenerateOTP(ctx context.Context, orderID kernel.UUID) (string, error)
}
