// Package http exposes the agent's use cases as a JSON API under /api/v1.
package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapitypes "github.com/oapi-codegen/runtime/types"
)

// Server adapts HTTP requests to command and query handlers.
type Server struct {
	acceptOffer   commands.AcceptOfferCommandHandler
	declineOffer  commands.DeclineOfferCommandHandler
	advance       commands.AdvanceDeliveryCommandHandler
	requestOTP    commands.RequestOTPCommandHandler
	settlePayout  commands.SettlePayoutCommandHandler
	clearFeed     commands.ClearNotificationsCommandHandler
	openOffers    queries.GetOpenOffersQueryHandler
	activeOrders  queries.GetActiveOrdersQueryHandler
	getOrder      queries.GetOrderQueryHandler
	notifications queries.GetNotificationsQueryHandler
	earnings      queries.GetEarningsQueryHandler
	summary       queries.GetEarningsSummaryQueryHandler
}

// Handlers lists everything the server dispatches to.
type Handlers struct {
	AcceptOffer        commands.AcceptOfferCommandHandler
	DeclineOffer       commands.DeclineOfferCommandHandler
	AdvanceDelivery    commands.AdvanceDeliveryCommandHandler
	RequestOTP         commands.RequestOTPCommandHandler
	SettlePayout       commands.SettlePayoutCommandHandler
	ClearNotifications commands.ClearNotificationsCommandHandler
	GetOpenOffers      queries.GetOpenOffersQueryHandler
	GetActiveOrders    queries.GetActiveOrdersQueryHandler
	GetOrder           queries.GetOrderQueryHandler
	GetNotifications   queries.GetNotificationsQueryHandler
	GetEarnings        queries.GetEarningsQueryHandler
	GetEarningsSummary queries.GetEarningsSummaryQueryHandler
}

func NewServer(h Handlers) *Server {
	return &Server{
		acceptOffer:   h.AcceptOffer,
		declineOffer:  h.DeclineOffer,
		advance:       h.AdvanceDelivery,
		requestOTP:    h.RequestOTP,
		settlePayout:  h.SettlePayout,
		clearFeed:     h.ClearNotifications,
		openOffers:    h.GetOpenOffers,
		activeOrders:  h.GetActiveOrders,
		getOrder:      h.GetOrder,
		notifications: h.GetNotifications,
		earnings:      h.GetEarnings,
		summary:       h.GetEarningsSummary,
	}
}

// GetOffers handles GET /api/v1/offers.
func (s *Server) GetOffers(c echo.Context) error {
	offers, err := s.openOffers.Handle(c.Request().Context(), queries.NewGetOpenOffersQuery())
	if err != nil {
		return err
	}

	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		out = append(out, Offer{
			Order:            toOrder(o.Order),
			OfferedAt:        o.OfferedAt,
			ExpiresAt:        o.ExpiresAt,
			RemainingSeconds: int(o.Remaining.Seconds()),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// AcceptOffer handles POST /api/v1/offers/{orderId}/accept.
func (s *Server) AcceptOffer(c echo.Context) error {
	orderID, err := bindOrderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewAcceptOfferCommand(orderID)
	if err != nil {
		return err
	}

	accepted, err := s.acceptOffer.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrder(queries.NewOrderResponse(accepted)))
}

// DeclineOffer handles POST /api/v1/offers/{orderId}/decline.
func (s *Server) DeclineOffer(c echo.Context) error {
	orderID, err := bindOrderID(c)
	if err != nil {
		return err
	}
	var req DeclineRequest
	if err = c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	cmd, err := commands.NewDeclineOfferCommand(orderID, req.Reason)
	if err != nil {
		return err
	}

	if err = s.declineOffer.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetOrders handles GET /api/v1/orders.
func (s *Server) GetOrders(c echo.Context) error {
	orders, err := s.activeOrders.Handle(c.Request().Context(), queries.NewGetActiveOrdersQuery())
	if err != nil {
		return err
	}

	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	return c.JSON(http.StatusOK, out)
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := bindOrderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return err
	}

	o, err := s.getOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrder(o))
}

// AdvanceOrder handles POST /api/v1/orders/{orderId}/status.
func (s *Server) AdvanceOrder(c echo.Context) error {
	orderID, err := bindOrderID(c)
	if err != nil {
		return err
	}
	var req StatusRequest
	if err = c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}

	target, err := parseTargetStatus(req.Status)
	if err != nil {
		return err
	}
	var evidence *commands.Evidence
	if req.Proof != nil {
		ev, evErr := commands.NewEvidence(req.Proof.Kind, req.Proof.Value)
		if evErr != nil {
			return evErr
		}
		evidence = &ev
	}

	cmd, err := commands.NewAdvanceDeliveryCommand(orderID, target, evidence)
	if err != nil {
		return err
	}
	updated, err := s.advance.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrder(queries.NewOrderResponse(updated)))
}

// RequestOTP handles POST /api/v1/orders/{orderId}/otp. The code goes to the
// customer only and is never part of the response.
func (s *Server) RequestOTP(c echo.Context) error {
	orderID, err := bindOrderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRequestOTPCommand(orderID)
	if err != nil {
		return err
	}

	if err = s.requestOTP.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// GetNotifications handles GET /api/v1/notifications?limit=n.
func (s *Server) GetNotifications(c echo.Context) error {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.QueryParams(), &limit); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("limit", err)
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	query, err := queries.NewGetNotificationsQuery(n)
	if err != nil {
		return err
	}

	entries, err := s.notifications.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	out := make([]Notification, 0, len(entries))
	for _, e := range entries {
		out = append(out, Notification{ID: e.ID.String(), Type: e.Type, Message: e.Message, Time: e.Time})
	}
	return c.JSON(http.StatusOK, out)
}

// ClearNotifications handles DELETE /api/v1/notifications.
func (s *Server) ClearNotifications(c echo.Context) error {
	if err := s.clearFeed.Handle(c.Request().Context(), commands.NewClearNotificationsCommand()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetEarnings handles GET /api/v1/earnings?window=today|week|month.
func (s *Server) GetEarnings(c echo.Context) error {
	var window *string
	if err := runtime.BindQueryParameter("form", true, false, "window", c.QueryParams(), &window); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("window", err)
	}
	period := ""
	if window != nil {
		period = *window
	}
	query, err := queries.NewGetEarningsQuery(period)
	if err != nil {
		return err
	}

	resp, err := s.earnings.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Earnings{Window: string(resp.Period), Aggregates: toAggregates(resp.Aggregates)})
}

// GetEarningsSummary handles GET /api/v1/earnings/summary.
func (s *Server) GetEarningsSummary(c echo.Context) error {
	sum, err := s.summary.Handle(c.Request().Context(), queries.NewGetEarningsSummaryQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, EarningsSummary{
		Today:         toAggregates(sum.Today),
		Week:          toAggregates(sum.Week),
		Month:         toAggregates(sum.Month),
		PendingPayout: sum.PendingPayout.MinorUnits(),
	})
}

// SettlePayout handles POST /api/v1/earnings/settlements.
func (s *Server) SettlePayout(c echo.Context) error {
	var req SettlementRequest
	if err := c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	cmd, err := commands.NewSettlePayoutCommand(req.Amount)
	if err != nil {
		return err
	}

	balance, err := s.settlePayout.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Balance{PendingPayout: balance.MinorUnits()})
}

func bindOrderID(c echo.Context) (kernel.UUID, error) {
	var id openapitypes.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", "orderId", c.Param("orderId"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("orderId", err)
	}
	return kernel.UUIDFromGoogle(id)
}
