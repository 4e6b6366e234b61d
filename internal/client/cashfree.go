package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/imroc/req/v3"
	"github.com/ivanpodgorny/printshop/internal/entity"
	inerr "github.com/ivanpodgorny/printshop/internal/errors"
)

const (
	DefaultBaseURL    = "https://api.cashfree.com/pg"
	DefaultAPIVersion = "2023-08-01"

	orderStatusPaid = "PAID"
)

// Cashfree - клиент API платежного шлюза Cashfree PG.
type Cashfree struct {
	req       *req.Client
	signer    Signer
	returnURL string
}

type Signer interface {
	Verify(body []byte, timestamp, signature string) bool
}

type CashfreeConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIVersion   string
	ReturnURL    string
	Timeout      time.Duration
}

type createOrderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       *orderMeta      `json:"order_meta,omitempty"`
	OrderNote       string          `json:"order_note,omitempty"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url"`
}

type orderResponse struct {
	OrderID          string `json:"order_id"`
	OrderStatus      string `json:"order_status"`
	PaymentSessionID string `json:"payment_session_id"`
}

type webhookPayload struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Data  struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			PaymentStatus string `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

func NewCashfree(cfg CashfreeConfig, s Signer) *Cashfree {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Cashfree{
		req: req.C().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetCommonHeaders(map[string]string{
				"x-client-id":     cfg.ClientID,
				"x-client-secret": cfg.ClientSecret,
				"x-api-version":   cfg.APIVersion,
			}),
		signer:    s,
		returnURL: cfg.ReturnURL,
	}
}

// CreateOrder создает заказ в платежном шлюзе и возвращает идентификатор платежной
// сессии для открытия страницы оплаты. Если шлюз ответил ошибкой или не вернул
// идентификатор сессии, возвращает *errors.GatewayError.
func (c *Cashfree) CreateOrder(
	ctx context.Context,
	id string,
	amount float64,
	currency string,
	customer entity.Customer,
) (string, error) {
	body := createOrderRequest{
		OrderID:       id,
		OrderAmount:   amount,
		OrderCurrency: currency,
		CustomerDetails: customerDetails{
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			CustomerPhone: customer.Phone,
		},
		OrderNote: "Print order",
	}
	if c.returnURL != "" {
		body.OrderMeta = &orderMeta{ReturnURL: strings.ReplaceAll(c.returnURL, "{order_id}", id)}
	}

	respBody := orderResponse{}
	resp, err := c.req.R().
		SetContext(ctx).
		SetHeader("x-request-id", uuid.NewString()).
		SetBody(&body).
		SetSuccessResult(&respBody).
		Post("/orders")
	if err != nil {
		return "", transportError(err)
	}

	if !resp.IsSuccessState() {
		return "", &inerr.GatewayError{StatusCode: resp.StatusCode, Body: resp.String()}
	}

	if respBody.PaymentSessionID == "" {
		return "", &inerr.GatewayError{StatusCode: resp.StatusCode, Body: "missing payment_session_id: " + resp.String()}
	}

	return respBody.PaymentSessionID, nil
}

// IsPaid запрашивает у платежного шлюза текущий статус заказа.
func (c *Cashfree) IsPaid(ctx context.Context, id string) (bool, error) {
	respBody := orderResponse{}
	resp, err := c.req.R().
		SetContext(ctx).
		SetSuccessResult(&respBody).
		SetPathParam("order_id", id).
		Get("/orders/{order_id}")
	if err != nil {
		return false, transportError(err)
	}

	if !resp.IsSuccessState() {
		return false, &inerr.GatewayError{StatusCode: resp.StatusCode, Body: resp.String()}
	}

	return respBody.OrderStatus == orderStatusPaid, nil
}

// VerifySignature проверяет подпись уведомления платежного шлюза.
func (c *Cashfree) VerifySignature(rawBody []byte, timestamp, signature string) bool {
	return c.signer.Verify(rawBody, timestamp, signature)
}

// ParseWebhook разбирает тело уведомления платежного шлюза. Поддерживаются формат
// {"event": "PAYMENT_SUCCESS"} и формат {"type": "PAYMENT_SUCCESS_WEBHOOK"}.
func (c *Cashfree) ParseWebhook(rawBody []byte) (entity.PaymentEvent, error) {
	p := webhookPayload{}
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return entity.PaymentEvent{}, fmt.Errorf("%w: %v", inerr.ErrUnsupportedWebhookPayload, err)
	}

	if p.Data.Order.OrderID == "" {
		return entity.PaymentEvent{}, fmt.Errorf("%w: missing order_id", inerr.ErrUnsupportedWebhookPayload)
	}

	success := p.Event == "PAYMENT_SUCCESS" ||
		(p.Type == "PAYMENT_SUCCESS_WEBHOOK" && (p.Data.Payment.PaymentStatus == "" || p.Data.Payment.PaymentStatus == "SUCCESS"))

	return entity.PaymentEvent{
		TrackingID: p.Data.Order.OrderID,
		Success:    success,
	}, nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", inerr.ErrGatewayTimeout, err)
	}

	return &inerr.GatewayError{StatusCode: http.StatusBadGateway, Body: err.Error()}
}
