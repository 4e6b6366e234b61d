package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ivanpodgorny/printshop/internal/entity"
	inerr "github.com/ivanpodgorny/printshop/internal/errors"
	"github.com/ivanpodgorny/printshop/internal/identifier"
	"github.com/ivanpodgorny/printshop/internal/service"
	"github.com/ivanpodgorny/printshop/internal/storage"
	"go.uber.org/zap"
)

const (
	maxUploadMemory = 32 << 20
	maxWebhookSize  = 1 << 20
	documentsField  = "documents"
)

type Order struct {
	processor OrderProcessor
	validator Validator
	logger    *zap.Logger
}

type OrderProcessor interface {
	Submit(ctx context.Context, sub service.Submission) (service.SubmitResult, error)
	VerifyAndRedeem(ctx context.Context, trackingID string) (string, error)
	HandleWebhook(ctx context.Context, rawBody []byte, timestamp, signature string) error
	Quote(ctx context.Context, opts entity.Options, pageCounts []int) (entity.Quote, error)
}

func NewOrder(p OrderProcessor, v Validator, logger *zap.Logger) *Order {
	return &Order{
		processor: p,
		validator: v,
		logger:    logger,
	}
}

// Create принимает заказ на печать: multipart-форму с файлами documents, способом
// оплаты payMethod, параметрами печати options (JSON) и стоимостью price. Для оплаты
// при получении возвращает код выдачи, для онлайн-оплаты - платежную сессию и
// временный идентификатор заказа.
func (h *Order) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		badRequest(w)

		return
	}

	headers := r.MultipartForm.File[documentsField]
	if len(headers) == 0 {
		badRequest(w)

		return
	}

	method, ok := entity.ParsePayMethod(r.FormValue("payMethod"))
	if !ok {
		badRequest(w)

		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		badRequest(w)

		return
	}

	opts := entity.Options{}
	if err := json.Unmarshal([]byte(r.FormValue("options")), &opts); err != nil {
		badRequest(w)

		return
	}

	if err := h.validator.Struct(r.Context(), opts); err != nil {
		unprocessable(w)

		return
	}

	files := make([]storage.Incoming, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadedFile{header: fh})
	}

	res, err := h.processor.Submit(r.Context(), service.Submission{
		Files:     files,
		Options:   opts,
		Price:     price,
		PayMethod: method,
		Customer: entity.Customer{
			Name:  r.FormValue("customerName"),
			Email: r.FormValue("customerEmail"),
			Phone: r.FormValue("customerPhone"),
		},
	})
	if errors.Is(err, inerr.ErrStorageTimeout) {
		gatewayTimeout(w)

		return
	} else if err != nil {
		h.logger.Error("order submission failed", zap.Error(err))
		serverError(w)

		return
	}

	responseAsJSON(w, res, http.StatusOK)
}

// Verify проверяет оплату заказа с онлайн-оплатой и возвращает код выдачи. Если оплата
// еще не завершена, возвращает ответ с кодом 402. Идентификаторы без префикса
// временного идентификатора не ищутся и получают ответ с кодом 404.
func (h *Order) Verify(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingId")
	if !identifier.IsTrackingID(trackingID) {
		notFound(w)

		return
	}

	code, err := h.processor.VerifyAndRedeem(r.Context(), trackingID)
	switch {
	case err == nil:
		responseAsJSON(w, map[string]string{"code": code}, http.StatusOK)
	case errors.Is(err, inerr.ErrOrderNotFound):
		notFound(w)
	case errors.Is(err, inerr.ErrPaymentNotCompleted):
		http.Error(w, "402 payment not completed", http.StatusPaymentRequired)
	case errors.Is(err, inerr.ErrGatewayTimeout), errors.Is(err, inerr.ErrStorageTimeout):
		gatewayTimeout(w)
	default:
		h.logger.Error("payment verification failed", zap.String("tracking_id", trackingID), zap.Error(err))
		serverError(w)
	}
}

// Webhook принимает уведомление платежного шлюза. Подпись проверяется по исходному
// телу запроса и заголовкам x-webhook-timestamp и x-webhook-signature. Тело больше
// maxWebhookSize отклоняется с кодом 413.
func (h *Order) Webhook(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookSize))
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		http.Error(w, "413 request entity too large", http.StatusRequestEntityTooLarge)

		return
	} else if err != nil {
		badRequest(w)

		return
	}

	err = h.processor.HandleWebhook(
		r.Context(),
		b,
		r.Header.Get("x-webhook-timestamp"),
		r.Header.Get("x-webhook-signature"),
	)
	if errors.Is(err, inerr.ErrInvalidSignature) {
		w.WriteHeader(http.StatusUnauthorized)

		return
	} else if err != nil {
		h.logger.Error("webhook handling failed", zap.Error(err))
		serverError(w)

		return
	}

	w.WriteHeader(http.StatusOK)
}

// Quote рассчитывает стоимость печати по параметрам и количеству страниц документов.
func (h *Order) Quote(w http.ResponseWriter, r *http.Request) {
	req := QuoteRequest{}
	if err := readJSONBody(&req, r); err != nil {
		badRequest(w)

		return
	}

	if err := h.validator.Struct(r.Context(), req); err != nil {
		unprocessable(w)

		return
	}

	quote, err := h.processor.Quote(r.Context(), req.Options, req.PageCounts)
	if err != nil {
		unprocessable(w)

		return
	}

	responseAsJSON(w, quote, http.StatusOK)
}
