// Package dispatch maintains the agent's open offers: it refreshes them from the
// order service, times them out, and performs race-safe accept and decline.
package dispatch

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/offer"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/metrics"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// DefaultDeclineReason is used when the agent declines without saying why.
const DefaultDeclineReason = "Declined by agent"

// remoteTimeout bounds calls made from timer callbacks, which have no caller context.
const remoteTimeout = 10 * time.Second

// ErrRefreshInProgress is returned when a refresh starts while another is outstanding.
var ErrRefreshInProgress = errors.New("offer refresh already in progress")

// Handoff receives exclusive ownership of an accepted order.
type Handoff interface {
	Take(ctx context.Context, o *order.Order) error
}

// OpenOffer is a read-only view of a pending offer.
type OpenOffer struct {
	Order     *order.Order
	OfferedAt time.Time
	// ExpiresAt is OfferedAt plus the session's offer window.
	ExpiresAt time.Time
	// Remaining is the time left at the moment the view was taken, never negative.
	Remaining time.Duration
}

// Pool is the agent's dispatch pool.
//
// Accept is two-phase: the offer is first claimed locally (hidden from listings,
// immune to expiry), then the order service arbitrates. On success the order is
// handed to the delivery state machine; on conflict the offer is dropped; on a
// transport failure the claim is rolled back and the offer shows again.
type Pool struct {
	mu       sync.Mutex
	offers   map[kernel.UUID]*offer.Offer
	handles  map[kernel.UUID]Handle
	declined map[kernel.UUID]struct{}
	// unsent holds decline notifications the order service has not acknowledged yet.
	unsent map[kernel.UUID]string
	// stranded holds orders the service assigned to the agent that were not taken over yet.
	stranded map[kernel.UUID]*order.Order

	refreshing atomic.Bool

	session  session.Session
	service  ports.OrderService
	handoff  Handoff
	timer    *OfferTimer
	clock    clock.Clock
	notifier ports.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewPool builds an empty pool for the session's agent. Offers appear on the
// first Refresh; each one gets its own countdown on clk. m and logger may be nil.
//
// Example:
//
//	pool, err := dispatch.NewPool(sess, orderService, stateMachine, clock.New(), feed, m, logger)
//	if err != nil {
//	    return err
//	}
//	defer pool.Stop()
//
//	if err = pool.Refresh(ctx); err != nil {
//	    return err
//	}
//	for _, open := range pool.ListOpenOffers() {
//	    fmt.Println(open.Order.ID(), open.Remaining)
//	}
func NewPool(
	sess session.Session,
	service ports.OrderService,
	handoff Handoff,
	clk clock.Clock,
	notifier ports.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*Pool, error) {
	var missing []error
	if err := sess.Validate(); err != nil {
		missing = append(missing, err)
	}
	if service == nil {
		missing = append(missing, errs.NewValueIsRequiredError("order service"))
	}
	if handoff == nil {
		missing = append(missing, errs.NewValueIsRequiredError("handoff"))
	}
	if clk == nil {
		missing = append(missing, errs.NewValueIsRequiredError("clock"))
	}
	if notifier == nil {
		missing = append(missing, errs.NewValueIsRequiredError("notifier"))
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		offers:   make(map[kernel.UUID]*offer.Offer),
		handles:  make(map[kernel.UUID]Handle),
		declined: make(map[kernel.UUID]struct{}),
		unsent:   make(map[kernel.UUID]string),
		stranded: make(map[kernel.UUID]*order.Order),
		session:  sess,
		service:  service,
		handoff:  handoff,
		clock:    clk,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With(zap.String("component", "dispatch_pool")),
	}
	p.timer = NewOfferTimer(clk, p.expire)
	return p, nil
}

// Refresh pulls the current offers from the order service. New orders become
// offers with a fresh window; offers the service no longer lists are withdrawn.
// Orders declined in this session are never offered again. Refresh also retries
// decline notifications and hand-offs that failed earlier. Overlapping calls are refused.
func (p *Pool) Refresh(ctx context.Context) (err error) {
	if !p.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}
	defer p.refreshing.Store(false)

	started := time.Now()
	defer func() { p.metrics.RefreshObserved(time.Since(started), err != nil) }()

	p.flushDeclines(ctx)
	p.flushHandoffs(ctx)

	orders, err := p.service.FetchOpenOffers(ctx, p.session.AgentID())
	if err != nil {
		p.logger.Warn("offer refresh failed", zap.Error(err))
		return err
	}

	var added, withdrawn []*offer.Offer
	p.mu.Lock()
	now := p.clock.Now()
	listed := make(map[kernel.UUID]struct{}, len(orders))
	for _, o := range orders {
		listed[o.ID()] = struct{}{}
		if _, ok := p.declined[o.ID()]; ok {
			continue
		}
		if _, ok := p.stranded[o.ID()]; ok {
			continue
		}
		if _, ok := p.offers[o.ID()]; ok {
			continue
		}
		f, ferr := offer.NewOffer(o, now, p.session.OfferWindow())
		if ferr != nil {
			p.logger.Warn("skipping unofferable order", zap.Stringer("order_id", o.ID()), zap.Error(ferr))
			continue
		}
		p.offers[o.ID()] = f
		p.handles[o.ID()] = p.timer.StartUntil(o.ID(), f.ExpiresAt())
		added = append(added, f)
	}
	for id, f := range p.offers {
		if _, ok := listed[id]; ok || f.IsClaiming() {
			continue
		}
		if derr := f.Decline(offer.ReasonWithdrawn, now); derr != nil {
			continue
		}
		p.drop(id)
		withdrawn = append(withdrawn, f)
	}
	p.metrics.SetOpenOffers(len(p.offers))
	p.mu.Unlock()

	for _, f := range added {
		p.notifier.Notify(ctx, notification.Info,
			"New order offer #"+f.OrderID().Short()+" worth "+f.Order().Total().String())
	}
	for _, f := range withdrawn {
		p.metrics.OfferResolved("withdrawn")
		p.notifier.Notify(ctx, notification.Info, "Offer #"+f.OrderID().Short()+" was withdrawn")
	}
	return nil
}

// ListOpenOffers returns pending offers that are not being claimed, soonest expiry first.
func (p *Pool) ListOpenOffers() []OpenOffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	open := make([]OpenOffer, 0, len(p.offers))
	for _, f := range p.offers {
		if !f.IsOpen() {
			continue
		}
		open = append(open, OpenOffer{
			Order:     f.Order().Snapshot(),
			OfferedAt: f.OfferedAt(),
			ExpiresAt: f.ExpiresAt(),
			Remaining: f.Remaining(now),
		})
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].ExpiresAt.Equal(open[j].ExpiresAt) {
			return open[i].Order.ID().String() < open[j].Order.ID().String()
		}
		return open[i].ExpiresAt.Before(open[j].ExpiresAt)
	})
	return open
}

// Accept claims the order for the session's agent.
//
// Errors:
//   - errs.ConflictError: not offered, already being claimed, or won by another agent
//   - errs.DispatchUnavailableError: the order service could not be reached; the offer stays open
//
// When the service grants the claim but the order cannot be handed to the
// delivery state machine, the error is returned, an error entry is appended to
// the feed, and the hand-off is retried on every refresh until it succeeds.
func (p *Pool) Accept(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	p.mu.Lock()
	f, ok := p.offers[orderID]
	if !ok {
		p.mu.Unlock()
		return nil, errs.NewConflictError(orderID.String(), "is no longer offered")
	}
	if err := f.Claim(); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.mu.Unlock()

	claimErr := p.service.ClaimOrder(ctx, orderID, p.session.AgentID())

	switch {
	case claimErr == nil:
		return p.confirm(ctx, f)
	case errors.Is(claimErr, errs.ErrConflict):
		p.lose(ctx, f)
		return nil, claimErr
	default:
		p.rollback(ctx, f)
		if !errors.Is(claimErr, errs.ErrDispatchUnavailable) {
			claimErr = errs.NewDispatchUnavailableError("claim order", claimErr)
		}
		return nil, claimErr
	}
}

// Decline resolves the offer locally without condition and tells the order
// service on a best-effort basis; failed notifications are retried on the next
// refresh. Declining an unknown offer is a no-op. An offer whose claim is in
// flight cannot be declined.
func (p *Pool) Decline(ctx context.Context, orderID kernel.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultDeclineReason
	}

	p.mu.Lock()
	f, ok := p.offers[orderID]
	if !ok {
		p.mu.Unlock()
		return nil
	}
	if f.IsClaiming() {
		p.mu.Unlock()
		return errs.NewConflictError(orderID.String(), "is being claimed")
	}
	if err := f.Decline(reason, p.clock.Now()); err != nil {
		p.mu.Unlock()
		return err
	}
	p.drop(orderID)
	p.declined[orderID] = struct{}{}
	p.metrics.SetOpenOffers(len(p.offers))
	p.mu.Unlock()

	p.metrics.OfferResolved("declined")
	p.notifier.Notify(ctx, notification.Info, "Offer #"+orderID.Short()+" declined: "+reason)
	p.sendDecline(ctx, orderID, reason)
	return nil
}

// PendingDeclines is the number of decline notifications waiting for a retry.
func (p *Pool) PendingDeclines() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.unsent)
}

// PendingHandoffs is the number of granted orders waiting to be taken over.
func (p *Pool) PendingHandoffs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.stranded)
}

// Stop cancels every countdown. Open offers are left to expire on the service side.
func (p *Pool) Stop() {
	p.timer.Stop()
}

func (p *Pool) confirm(ctx context.Context, f *offer.Offer) (*order.Order, error) {
	id := f.OrderID()

	p.mu.Lock()
	now := p.clock.Now()
	if err := f.Accept(now); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.drop(id)
	p.metrics.SetOpenOffers(len(p.offers))
	p.mu.Unlock()

	o := f.Order()
	accepted, err := p.adopt(ctx, o, now)
	if err != nil {
		p.mu.Lock()
		p.stranded[id] = o
		p.mu.Unlock()

		p.logger.Error("claimed order could not be taken over", zap.Stringer("order_id", id), zap.Error(err))
		p.notifier.Notify(ctx, notification.Error,
			"Order #"+id.Short()+" is assigned to you but could not be opened, retrying: "+err.Error())
		return nil, err
	}

	p.metrics.OfferResolved("accepted")
	p.notifier.Notify(ctx, notification.Success, "Order #"+id.Short()+" accepted")
	return accepted, nil
}

// adopt finishes the local side of a claim the order service granted. It is
// safe to repeat: an order already accepted or already owned is not touched again.
func (p *Pool) adopt(ctx context.Context, o *order.Order, now time.Time) (*order.Order, error) {
	if o.Status() == order.Pending {
		if err := o.Accept(p.session.AgentID(), now); err != nil {
			return nil, err
		}
	}
	accepted := o.Snapshot()
	if err := p.handoff.Take(ctx, o); err != nil && !errors.Is(err, errs.ErrConflict) {
		return nil, err
	}
	return accepted, nil
}

func (p *Pool) flushHandoffs(ctx context.Context) {
	p.mu.Lock()
	queued := make([]*order.Order, 0, len(p.stranded))
	for _, o := range p.stranded {
		queued = append(queued, o)
	}
	p.mu.Unlock()

	for _, o := range queued {
		if _, err := p.adopt(ctx, o, p.clock.Now()); err != nil {
			p.logger.Warn("hand-off retry failed", zap.Stringer("order_id", o.ID()), zap.Error(err))
			continue
		}
		p.mu.Lock()
		delete(p.stranded, o.ID())
		p.mu.Unlock()

		p.metrics.OfferResolved("accepted")
		p.notifier.Notify(ctx, notification.Success, "Order #"+o.ID().Short()+" accepted")
	}
}

func (p *Pool) lose(ctx context.Context, f *offer.Offer) {
	id := f.OrderID()

	p.mu.Lock()
	if err := f.Decline(offer.ReasonClaimed, p.clock.Now()); err != nil {
		p.logger.Error("could not resolve lost offer", zap.Stringer("order_id", id), zap.Error(err))
	}
	p.drop(id)
	p.metrics.SetOpenOffers(len(p.offers))
	p.mu.Unlock()

	p.metrics.OfferResolved("conflict")
	p.notifier.Notify(ctx, notification.Warning, "Order #"+id.Short()+" was claimed by another agent")
}

func (p *Pool) rollback(ctx context.Context, f *offer.Offer) {
	id := f.OrderID()

	p.mu.Lock()
	f.Release()
	now := p.clock.Now()
	expired := false
	if f.IsDue(now) {
		if err := f.Expire(now); err == nil {
			p.drop(id)
			expired = true
		}
	}
	p.metrics.SetOpenOffers(len(p.offers))
	p.mu.Unlock()

	p.notifier.Notify(ctx, notification.Error, "Could not reach dispatch to accept order #"+id.Short())
	if expired {
		p.afterExpiry(ctx, id)
	}
}

// expire is the OfferTimer callback. It defers to an in-flight claim; the claim's
// rollback expires the offer if its deadline has passed by then.
func (p *Pool) expire(orderID kernel.UUID, h Handle) {
	p.mu.Lock()
	f, ok := p.offers[orderID]
	if !ok || p.handles[orderID] != h {
		p.mu.Unlock()
		return
	}
	if err := f.Expire(p.clock.Now()); err != nil {
		p.mu.Unlock()
		return
	}
	p.drop(orderID)
	p.metrics.SetOpenOffers(len(p.offers))
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	p.afterExpiry(ctx, orderID)
}

func (p *Pool) afterExpiry(ctx context.Context, orderID kernel.UUID) {
	p.metrics.OfferResolved("expired")
	p.notifier.Notify(ctx, notification.Info, "Offer #"+orderID.Short()+" expired: "+offer.ReasonTimeout)
	p.sendDecline(ctx, orderID, offer.ReasonTimeout)
}

func (p *Pool) sendDecline(ctx context.Context, orderID kernel.UUID, reason string) {
	if err := p.service.DeclineOrder(ctx, orderID, reason); err != nil {
		p.logger.Warn("decline not delivered, will retry", zap.Stringer("order_id", orderID), zap.Error(err))
		p.mu.Lock()
		p.unsent[orderID] = reason
		p.mu.Unlock()
	}
}

func (p *Pool) flushDeclines(ctx context.Context) {
	p.mu.Lock()
	queued := make(map[kernel.UUID]string, len(p.unsent))
	for id, reason := range p.unsent {
		queued[id] = reason
	}
	p.mu.Unlock()

	for id, reason := range queued {
		if err := p.service.DeclineOrder(ctx, id, reason); err != nil {
			p.logger.Warn("decline retry failed", zap.Stringer("order_id", id), zap.Error(err))
			continue
		}
		p.mu.Lock()
		delete(p.unsent, id)
		p.mu.Unlock()
	}
}

// drop must be called with mu held. It removes the offer and cancels its countdown.
func (p *Pool) drop(orderID kernel.UUID) {
	if h, ok := p.handles[orderID]; ok {
		p.timer.Cancel(h)
	}
	delete(p.handles, orderID)
	delete(p.offers, orderID)
}
