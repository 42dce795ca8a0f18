// Package orderservice is the HTTP/JSON client of the remote order service,
// the arbiter of which agent wins an order.
package orderservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read into messages.
const maxErrorBody = 4 << 10

var _ ports.OrderService = (*Client)(nil)

// Client maps HTTP outcomes onto the error taxonomy:
//   - transport failures and 5xx: errs.DispatchUnavailableError
//   - 409 on claim: errs.ConflictError
//   - 409/422 on status update: errs.StateError
//   - 400/422 on OTP verification or proof: errs.VerificationError
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client for baseURL. A nil httpClient gets DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("order service url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errs.NewValueIsInvalidErrorWithCause("order service url", fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		logger:  logger.With(zap.String("component", "order_service_client")),
	}, nil
}

func (c *Client) FetchOpenOffers(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error) {
	var dtos []OrderDTO
	status, body, err := c.do(ctx, http.MethodGet, "/agents/"+agentID.String()+"/offers", nil, &dtos)
	if err != nil {
		return nil, errs.NewDispatchUnavailableError("fetch open offers", err)
	}
	if status != http.StatusOK {
		return nil, c.unexpected("fetch open offers", status, body)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, convErr := dto.toDomain()
		if convErr != nil {
			c.logger.Warn("skipping malformed offer", zap.String("order_id", dto.ID), zap.Error(convErr))
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (c *Client) ClaimOrder(ctx context.Context, orderID, agentID kernel.UUID) error {
	status, body, err := c.do(ctx, http.MethodPost, "/orders/"+orderID.String()+"/claim",
		claimRequest{AgentID: agentID.String()}, nil)
	if err != nil {
		return errs.NewDispatchUnavailableError("claim order", err)
	}

	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusConflict, http.StatusGone, http.StatusNotFound:
		return errs.NewConflictError(orderID.String(), message(body, "already claimed"))
	}
	return c.unexpected("claim order", status, body)
}

func (c *Client) DeclineOrder(ctx context.Context, orderID kernel.UUID, reason string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/orders/"+orderID.String()+"/decline",
		declineRequest{Reason: reason}, nil)
	if err != nil {
		return errs.NewDispatchUnavailableError("decline order", err)
	}

	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusConflict, http.StatusGone:
		// The order already left this agent's pool; nothing to undo.
		return nil
	}
	return c.unexpected("decline order", status, body)
}

func (c *Client) UpdateOrderStatus(
	ctx context.Context,
	orderID kernel.UUID,
	target order.Status,
	pod *proof.ProofOfDelivery,
) error {
	status, body, err := c.do(ctx, http.MethodPut, "/orders/"+orderID.String()+"/status",
		statusRequest{Status: target.Code(), Proof: proofFromDomain(pod)}, nil)
	if err != nil {
		return errs.NewDispatchUnavailableError("update order status", err)
	}

	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return errs.NewStateErrorWithCause(order.Unknown, target, errors.New(message(body, "rejected by order service")))
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if pod != nil {
			return errs.NewVerificationError(message(body, "proof rejected by order service"))
		}
		return errs.NewStateErrorWithCause(order.Unknown, target, errors.New(message(body, "rejected by order service")))
	}
	return c.unexpected("update order status", status, body)
}

func (c *Client) GenerateOTP(ctx context.Context, orderID kernel.UUID) (string, error) {
	var resp otpResponse
	status, body, err := c.do(ctx, http.MethodPost, "/orders/"+orderID.String()+"/otp", nil, &resp)
	if err != nil {
		return "", errs.NewDispatchUnavailableError("generate otp", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", c.unexpected("generate otp", status, body)
	}
	if err = proof.ValidateOTPCode(resp.Code); err != nil {
		return "", errs.NewDispatchUnavailableError("generate otp", err)
	}
	return resp.Code, nil
}

func (c *Client) VerifyOTP(ctx context.Context, orderID kernel.UUID, code string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/orders/"+orderID.String()+"/otp/verify",
		verifyRequest{Code: code}, nil)
	if err != nil {
		return errs.NewDispatchUnavailableError("verify otp", err)
	}

	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
		return errs.NewVerificationError(message(body, "code rejected by order service"))
	}
	return c.unexpected("verify otp", status, body)
}

// do sends one request. A non-nil out is decoded only for 2xx responses;
// the raw body is returned for everything else. err is set only for transport
// and decoding failures.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, []byte, error) {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("order service request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug("order service request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 || out == nil {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, body, nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil, nil
}

func (c *Client) unexpected(op string, status int, body []byte) error {
	cause := fmt.Errorf("unexpected status %d: %s", status, message(body, http.StatusText(status)))
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		return errs.NewDispatchUnavailableError(op, cause)
	}
	return fmt.Errorf("order service %s: %w", op, cause)
}

// message extracts {"message": …} from an error body, falling back to the raw text.
func message(body []byte, fallback string) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return fallback
}
