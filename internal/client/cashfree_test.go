package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/imroc/req/v3"
	"github.com/ivanpodgorny/printshop/internal/entity"
	inerr "github.com/ivanpodgorny/printshop/internal/errors"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const addr = "https://cashfree.loc/pg"

type SignerMock struct {
	mock.Mock
}

func (m *SignerMock) Verify(body []byte, timestamp, signature string) bool {
	args := m.Called(string(body), timestamp, signature)

	return args.Bool(0)
}

func newTestClient(returnURL string) (*Cashfree, func()) {
	r := req.C().
		SetBaseURL(addr).
		SetCommonHeader("x-api-version", DefaultAPIVersion)
	httpmock.ActivateNonDefault(r.GetClient())

	return &Cashfree{req: r, returnURL: returnURL}, httpmock.DeactivateAndReset
}

func TestCashfree_CreateOrder(t *testing.T) {
	var (
		ctx      = context.Background()
		id       = "cf_1700000000000abcdef12"
		customer = entity.Customer{ID: id, Name: "Guest", Email: "guest@example.com", Phone: "9999999999"}
	)

	client, reset := newTestClient("https://print.loc/verify.html?order_id={order_id}")
	defer reset()

	httpmock.RegisterResponder(
		http.MethodPost,
		addr+"/orders",
		func(r *http.Request) (*http.Response, error) {
			b, err := io.ReadAll(r.Body)
			if err != nil {
				return nil, err
			}

			body := createOrderRequest{}
			if err := json.Unmarshal(b, &body); err != nil {
				return nil, err
			}

			assert.Equal(t, DefaultAPIVersion, r.Header.Get("x-api-version"))
			assert.NotEmpty(t, r.Header.Get("x-request-id"))
			assert.Equal(t, id, body.OrderID)
			assert.Equal(t, 20.0, body.OrderAmount)
			assert.Equal(t, "INR", body.OrderCurrency)
			assert.Equal(t, "9999999999", body.CustomerDetails.CustomerPhone)
			require.NotNil(t, body.OrderMeta)
			assert.Equal(t, "https://print.loc/verify.html?order_id="+id, body.OrderMeta.ReturnURL)

			return httpmock.NewJsonResponse(http.StatusOK, map[string]string{
				"order_id":           id,
				"order_status":       "ACTIVE",
				"payment_session_id": "session_abc",
			})
		},
	)

	session, err := client.CreateOrder(ctx, id, 20, "INR", customer)
	require.NoError(t, err)
	assert.Equal(t, "session_abc", session, "успешное создание заказа в платежном шлюзе")
}

func TestCashfree_CreateOrderErrors(t *testing.T) {
	var (
		ctx      = context.Background()
		customer = entity.Customer{ID: "guest", Phone: "9999999999"}
	)

	client, reset := newTestClient("")
	defer reset()

	httpmock.RegisterResponder(
		http.MethodPost,
		addr+"/orders",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"message":"authentication Failed"}`).Once(),
	)

	_, err := client.CreateOrder(ctx, "cf_1", 20, "INR", customer)
	var gwErr *inerr.GatewayError
	require.ErrorAs(t, err, &gwErr, "ответ шлюза с ошибкой")
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	assert.Contains(t, gwErr.Body, "authentication Failed")
	assert.ErrorIs(t, err, inerr.ErrGateway)

	httpmock.RegisterResponder(
		http.MethodPost,
		addr+"/orders",
		httpmock.NewStringResponder(http.StatusOK, `{"order_id":"cf_2","order_status":"ACTIVE"}`).Once(),
	)

	_, err = client.CreateOrder(ctx, "cf_2", 20, "INR", customer)
	assert.ErrorIs(t, err, inerr.ErrGateway, "в ответе нет идентификатора платежной сессии")

	httpmock.RegisterResponder(
		http.MethodPost,
		addr+"/orders",
		httpmock.NewErrorResponder(context.DeadlineExceeded).Once(),
	)

	_, err = client.CreateOrder(ctx, "cf_3", 20, "INR", customer)
	assert.ErrorIs(t, err, inerr.ErrGatewayTimeout, "истекло время ожидания ответа шлюза")
}

func TestCashfree_IsPaid(t *testing.T) {
	var (
		ctx       = context.Background()
		paidID    = "cf_paid"
		activeID  = "cf_active"
		unknownID = "cf_unknown"
		getURL    = func(id string) string {
			return addr + "/orders/" + id
		}
	)

	client, reset := newTestClient("")
	defer reset()

	httpmock.RegisterResponder(
		http.MethodGet,
		getURL(paidID),
		httpmock.NewStringResponder(http.StatusOK, `{"order_id":"cf_paid","order_status":"PAID"}`),
	)
	httpmock.RegisterResponder(
		http.MethodGet,
		getURL(activeID),
		httpmock.NewStringResponder(http.StatusOK, `{"order_id":"cf_active","order_status":"ACTIVE"}`),
	)
	httpmock.RegisterResponder(
		http.MethodGet,
		getURL(unknownID),
		httpmock.NewStringResponder(http.StatusNotFound, `{"message":"order not found"}`),
	)

	paid, err := client.IsPaid(ctx, paidID)
	require.NoError(t, err)
	assert.True(t, paid, "заказ оплачен")

	paid, err = client.IsPaid(ctx, activeID)
	require.NoError(t, err)
	assert.False(t, paid, "заказ не оплачен")

	_, err = client.IsPaid(ctx, unknownID)
	assert.ErrorIs(t, err, inerr.ErrGateway, "заказ не найден в платежном шлюзе")
}

func TestCashfree_VerifySignature(t *testing.T) {
	var (
		signer = &SignerMock{}
		client = &Cashfree{signer: signer}
		body   = `{"type":"PAYMENT_SUCCESS_WEBHOOK"}`
	)

	signer.On("Verify", body, "1700000000", "valid").Return(true).Once()
	signer.On("Verify", body, "1700000000", "forged").Return(false).Once()

	assert.True(t, client.VerifySignature([]byte(body), "1700000000", "valid"))
	assert.False(t, client.VerifySignature([]byte(body), "1700000000", "forged"))
	signer.AssertExpectations(t)
}

func TestCashfree_ParseWebhook(t *testing.T) {
	client := &Cashfree{}

	tests := []struct {
		name    string
		body    string
		want    entity.PaymentEvent
		wantErr bool
	}{
		{
			name: "успешный платеж",
			body: `{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"cf_1"},"payment":{"payment_status":"SUCCESS"}}}`,
			want: entity.PaymentEvent{TrackingID: "cf_1", Success: true},
		},
		{
			name: "успешный платеж в формате event",
			body: `{"event":"PAYMENT_SUCCESS","data":{"order":{"order_id":"cf_2"}}}`,
			want: entity.PaymentEvent{TrackingID: "cf_2", Success: true},
		},
		{
			name: "неуспешный платеж",
			body: `{"type":"PAYMENT_FAILED_WEBHOOK","data":{"order":{"order_id":"cf_3"},"payment":{"payment_status":"FAILED"}}}`,
			want: entity.PaymentEvent{TrackingID: "cf_3", Success: false},
		},
		{
			name:    "нет идентификатора заказа",
			body:    `{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{}}`,
			wantErr: true,
		},
		{
			name:    "некорректный JSON",
			body:    `{`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.ParseWebhook([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, inerr.ErrUnsupportedWebhookPayload)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
