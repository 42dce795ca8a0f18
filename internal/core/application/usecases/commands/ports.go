// Package commands contains the agent's operations that change state: offer
// decisions, delivery progress, proof capture, payouts and the feed.
// Every command is built by a validating constructor and carries a guard;
// handlers check the guard first, then delegate to the stateful component
// they were given.
package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
)

// Narrow views of the application components used by the handlers.
type (
	// OfferRefresher pulls the current offers from the order service.
	OfferRefresher interface {
		Refresh(ctx context.Context) error
	}

	// OfferAcceptor claims an offered order for the agent.
	OfferAcceptor interface {
		Accept(ctx context.Context, orderID kernel.UUID) (*order.Order, error)
	}

	// OfferDecliner turns an offer down.
	OfferDecliner interface {
		Decline(ctx context.Context, orderID kernel.UUID, reason string) error
	}

	// DeliveryDriver moves owned orders through their lifecycle.
	DeliveryDriver interface {
		Transition(ctx context.Context, orderID kernel.UUID, target order.Status, pod *proof.ProofOfDelivery) (*order.Order, error)
		Advance(ctx context.Context, orderID kernel.UUID, pod *proof.ProofOfDelivery) (*order.Order, error)
		Order(ctx context.Context, orderID kernel.UUID) (*order.Order, error)
	}

	// ProofCapturer turns agent input into a proof of delivery.
	ProofCapturer interface {
		VerifyOTP(ctx context.Context, orderID kernel.UUID, code string) (proof.ProofOfDelivery, error)
		CapturePhoto(mediaRef string) (proof.ProofOfDelivery, error)
		CaptureSignature(mediaRef string) (proof.ProofOfDelivery, error)
	}

	// OwnedOrderReader looks up an order owned, or once owned, by the agent.
	OwnedOrderReader interface {
		Order(ctx context.Context, orderID kernel.UUID) (*order.Order, error)
	}

	// OTPRequester has a delivery code sent to the customer.
	OTPRequester interface {
		CaptureOTP(ctx context.Context, orderID kernel.UUID) (string, error)
	}

	// PayoutSettler applies a payout settlement to the pending balance.
	PayoutSettler interface {
		Settle(ctx context.Context, amount kernel.Money) (kernel.Money, error)
	}

	// FeedClearer empties the notification feed.
	FeedClearer interface {
		Clear(ctx context.Context) error
	}
)
