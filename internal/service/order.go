package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivanpodgorny/printshop/internal/entity"
	inerr "github.com/ivanpodgorny/printshop/internal/errors"
	"github.com/ivanpodgorny/printshop/internal/metrics"
	"github.com/ivanpodgorny/printshop/internal/pricing"
	"github.com/ivanpodgorny/printshop/internal/storage"
	"go.uber.org/zap"
)

const (
	pathVerify  = "verify"
	pathWebhook = "webhook"
)

// Order управляет жизненным циклом заказа: прием, оплата, замена временного
// идентификатора на код выдачи и выдача.
type Order struct {
	repository OrderRepository
	generator  IdentifierGenerator
	files      FilePlacement
	gateway    PaymentGateway
	locker     Locker
	queue      chan<- entity.PaymentConfirmation
	logger     *zap.Logger
	settings   Settings
}

type OrderRepository interface {
	Create(ctx context.Context, o entity.Order) error
	FindByIdentifier(ctx context.Context, id string) (entity.Order, error)
	FindByTrackingID(ctx context.Context, trackingID string) (entity.Order, error)
	ReserveRedemptionCode(ctx context.Context, trackingID, candidate string) (string, error)
	UpdateIdentifierAndStatus(ctx context.Context, oldID, newID string, files []string) error
}

type IdentifierGenerator interface {
	NextRedemptionCode(ctx context.Context) (string, error)
	NextTrackingID() string
}

type FilePlacement interface {
	Place(identifier string, files []storage.Incoming) ([]string, error)
	Relocate(oldIdentifier, newIdentifier string, paths []string) ([]string, error)
	Rebind(identifier string, paths []string) []string
	Exists(identifier string) bool
	Discard(identifier string) error
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, id string, amount float64, currency string, customer entity.Customer) (string, error)
	IsPaid(ctx context.Context, id string) (bool, error)
	VerifySignature(rawBody []byte, timestamp, signature string) bool
	ParseWebhook(rawBody []byte) (entity.PaymentEvent, error)
}

type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type Settings struct {
	Currency       string
	Customer       entity.Customer
	StorageTimeout time.Duration
	GatewayTimeout time.Duration
}

type Submission struct {
	Files     []storage.Incoming
	Options   entity.Options
	Price     float64
	PayMethod entity.PayMethod
	Customer  entity.Customer
}

// SubmitResult - результат приема заказа: код выдачи для оплаты при получении,
// платежная сессия и временный идентификатор для онлайн-оплаты или временный
// идентификатор с признаком Degraded, если платежный шлюз недоступен.
type SubmitResult struct {
	Code          string `json:"code,omitempty"`
	SessionHandle string `json:"sessionHandle,omitempty"`
	TrackingID    string `json:"trackingId,omitempty"`
	Degraded      bool   `json:"degraded,omitempty"`
}

func NewOrder(
	r OrderRepository,
	g IdentifierGenerator,
	f FilePlacement,
	gw PaymentGateway,
	l Locker,
	q chan<- entity.PaymentConfirmation,
	logger *zap.Logger,
	settings Settings,
) *Order {
	if settings.StorageTimeout <= 0 {
		settings.StorageTimeout = 5 * time.Second
	}

	if settings.GatewayTimeout <= 0 {
		settings.GatewayTimeout = 10 * time.Second
	}

	return &Order{
		repository: r,
		generator:  g,
		files:      f,
		gateway:    gw,
		locker:     l,
		queue:      q,
		logger:     logger,
		settings:   settings,
	}
}

// Submit принимает заказ. Для оплаты при получении сразу выдает код выдачи. Для
// онлайн-оплаты сохраняет заказ под временным идентификатором и создает заказ в
// платежном шлюзе; ошибка шлюза не прерывает прием заказа.
func (s *Order) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	switch sub.PayMethod {
	case entity.PayMethodDeferred:
		return s.submitDeferred(ctx, sub)
	case entity.PayMethodPrepaid:
		return s.submitPrepaid(ctx, sub)
	}

	return SubmitResult{}, fmt.Errorf("%w: %q", inerr.ErrUnsupportedPayMethod, sub.PayMethod)
}

// VerifyAndRedeem проверяет оплату заказа в платежном шлюзе и заменяет временный
// идентификатор на код выдачи. Для уже оплаченного заказа возвращает текущий код.
// Если оплата еще не завершена, возвращает ошибку errors.ErrPaymentNotCompleted.
func (s *Order) VerifyAndRedeem(ctx context.Context, trackingID string) (string, error) {
	order, err := s.findByTrackingID(ctx, trackingID)
	if err != nil {
		return "", err
	}

	if order.IsPaid() {
		return order.Identifier.Value, nil
	}

	gctx, cancel := context.WithTimeout(ctx, s.settings.GatewayTimeout)
	defer cancel()

	paid, err := s.gateway.IsPaid(gctx, trackingID)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("get_order").Inc()
		s.logger.Warn("payment status check failed", zap.String("tracking_id", trackingID), zap.Error(err))

		return "", err
	}

	if !paid {
		return "", inerr.ErrPaymentNotCompleted
	}

	return s.redeem(ctx, trackingID, pathVerify)
}

// HandleWebhook проверяет подпись уведомления платежного шлюза и ставит заказ в
// очередь на перевод в статус оплаченного. При неверной подписи возвращает ошибку
// errors.ErrInvalidSignature, состояние заказов не меняется.
func (s *Order) HandleWebhook(ctx context.Context, rawBody []byte, timestamp, signature string) error {
	if !s.gateway.VerifySignature(rawBody, timestamp, signature) {
		metrics.Webhooks.WithLabelValues("rejected").Inc()
		s.logger.Warn("webhook signature mismatch", zap.String("timestamp", timestamp))

		return inerr.ErrInvalidSignature
	}

	event, err := s.gateway.ParseWebhook(rawBody)
	if err != nil {
		metrics.Webhooks.WithLabelValues("ignored").Inc()
		s.logger.Warn("webhook payload ignored", zap.Error(err))

		return nil
	}

	if !event.Success {
		metrics.Webhooks.WithLabelValues("ignored").Inc()

		return nil
	}

	metrics.Webhooks.WithLabelValues("accepted").Inc()
	go func() {
		s.queue <- entity.PaymentConfirmation{TrackingID: event.TrackingID}
	}()

	return nil
}

// Confirm переводит заказ с онлайн-оплатой, оплата которого подтверждена уведомлением
// платежного шлюза, в статус оплаченного.
func (s *Order) Confirm(ctx context.Context, trackingID string) (string, error) {
	return s.redeem(ctx, trackingID, pathWebhook)
}

// Lookup возвращает заказ по коду выдачи.
func (s *Order) Lookup(ctx context.Context, code string) (entity.Order, error) {
	sctx, cancel := context.WithTimeout(ctx, s.settings.StorageTimeout)
	defer cancel()

	return s.repository.FindByIdentifier(sctx, code)
}

// Quote рассчитывает стоимость печати по тарифу за страницу.
func (s *Order) Quote(_ context.Context, opts entity.Options, pageCounts []int) (entity.Quote, error) {
	return pricing.Quote(opts, pageCounts)
}

func (s *Order) submitDeferred(ctx context.Context, sub Submission) (SubmitResult, error) {
	code, err := s.nextCode(ctx)
	if err != nil {
		return SubmitResult{}, err
	}

	order, err := s.place(ctx, code, sub.Files, s.nextCode, func(id string, paths []string) entity.Order {
		return entity.NewDeferredOrder(id, paths, sub.Options, sub.Price)
	})
	if err != nil {
		metrics.OrdersSubmitted.WithLabelValues(string(entity.PayMethodDeferred), "error").Inc()

		return SubmitResult{}, err
	}

	metrics.OrdersSubmitted.WithLabelValues(string(entity.PayMethodDeferred), "ok").Inc()
	s.logger.Info("order accepted", zap.String("code", order.Identifier.Value), zap.Int("files", len(order.FilePaths)))

	return SubmitResult{Code: order.Identifier.Value}, nil
}

func (s *Order) submitPrepaid(ctx context.Context, sub Submission) (SubmitResult, error) {
	next := func(context.Context) (string, error) {
		return s.generator.NextTrackingID(), nil
	}
	order, err := s.place(ctx, s.generator.NextTrackingID(), sub.Files, next, func(id string, paths []string) entity.Order {
		return entity.NewPrepaidOrder(id, paths, sub.Options, sub.Price)
	})
	if err != nil {
		metrics.OrdersSubmitted.WithLabelValues(string(entity.PayMethodPrepaid), "error").Inc()

		return SubmitResult{}, err
	}

	trackingID := order.Identifier.Value
	gctx, cancel := context.WithTimeout(ctx, s.settings.GatewayTimeout)
	defer cancel()

	session, err := s.gateway.CreateOrder(gctx, trackingID, sub.Price, s.settings.Currency, s.customer(trackingID, sub.Customer))
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("create_order").Inc()
		metrics.OrdersSubmitted.WithLabelValues(string(entity.PayMethodPrepaid), "degraded").Inc()
		s.logger.Warn(
			"payment gateway unavailable, order accepted in degraded mode",
			zap.String("tracking_id", trackingID),
			zap.Error(err),
		)

		return SubmitResult{TrackingID: trackingID, Degraded: true}, nil
	}

	metrics.OrdersSubmitted.WithLabelValues(string(entity.PayMethodPrepaid), "ok").Inc()
	s.logger.Info("prepaid order accepted", zap.String("tracking_id", trackingID))

	return SubmitResult{SessionHandle: session, TrackingID: trackingID}, nil
}

// place сохраняет файлы и заказ под идентификатором id. Если идентификатор оказался
// занят каталогом или заказом, один раз повторяет сохранение с новым идентификатором
// от next. При ошибке удаляется только каталог, созданный этим вызовом.
func (s *Order) place(
	ctx context.Context,
	id string,
	files []storage.Incoming,
	next func(context.Context) (string, error),
	build func(id string, paths []string) entity.Order,
) (entity.Order, error) {
	paths, err := s.files.Place(id, files)
	if errors.Is(err, inerr.ErrDuplicateIdentifier) {
		s.logger.Warn("order directory collision, retrying", zap.String("identifier", id))

		if id, err = next(ctx); err == nil {
			paths, err = s.files.Place(id, files)
		}
	}

	if err != nil {
		s.logger.Error("files placement failed", zap.String("identifier", id), zap.Error(err))

		return entity.Order{}, err
	}

	order := build(id, paths)
	err = s.create(ctx, order)
	if errors.Is(err, inerr.ErrDuplicateIdentifier) {
		s.logger.Warn("order identifier collision, retrying", zap.String("identifier", id))

		var newID string
		if newID, err = next(ctx); err == nil {
			if paths, err = s.files.Relocate(id, newID, paths); err == nil {
				id = newID
				order = build(id, paths)
				err = s.create(ctx, order)
			}
		}
	}

	if err != nil {
		if derr := s.files.Discard(id); derr != nil {
			s.logger.Error("discarding order files failed", zap.String("identifier", id), zap.Error(derr))
		}

		return entity.Order{}, err
	}

	return order, nil
}

// redeem выполняет единственный допустимый переход заказа из временного идентификатора
// в код выдачи. Код выдачи закрепляется за заказом до переноса файлов, поэтому
// повторный или параллельный вызов использует тот же код.
func (s *Order) redeem(ctx context.Context, trackingID, path string) (string, error) {
	lctx, cancel := context.WithTimeout(ctx, s.settings.StorageTimeout)
	unlock, err := s.locker.Lock(lctx, trackingID)
	cancel()
	if errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: order lock: %v", inerr.ErrStorageTimeout, err)
	}

	if err != nil {
		return "", err
	}

	defer unlock()

	order, err := s.findByTrackingID(ctx, trackingID)
	if err != nil {
		return "", err
	}

	if order.IsPaid() {
		return order.Identifier.Value, nil
	}

	code, err := s.reserveCode(ctx, order)
	if err != nil {
		return "", err
	}

	oldID := order.Identifier.Value
	paths, err := s.files.Relocate(oldID, code, order.FilePaths)
	if err != nil {
		s.logger.Error("files relocation failed", zap.String("tracking_id", trackingID), zap.Error(err))

		return "", err
	}

	if s.files.Exists(code) {
		paths = s.files.Rebind(code, paths)
	}

	sctx, cancel := context.WithTimeout(ctx, s.settings.StorageTimeout)
	defer cancel()

	err = s.repository.UpdateIdentifierAndStatus(sctx, oldID, code, paths)
	if errors.Is(err, inerr.ErrOrderNotFound) {
		current, ferr := s.findByTrackingID(ctx, trackingID)
		if ferr == nil && current.IsPaid() {
			return current.Identifier.Value, nil
		}

		return "", err
	}

	if err != nil {
		return "", err
	}

	metrics.OrdersRedeemed.WithLabelValues(path).Inc()
	s.logger.Info(
		"order paid",
		zap.String("tracking_id", trackingID),
		zap.String("code", code),
		zap.String("path", path),
	)

	return code, nil
}

func (s *Order) reserveCode(ctx context.Context, order entity.Order) (string, error) {
	if order.RedemptionCode != "" {
		return order.RedemptionCode, nil
	}

	var (
		code, candidate string
		err             error
	)
	for i := 0; i < 2; i++ {
		candidate, err = s.nextCode(ctx)
		if err != nil {
			return "", err
		}

		sctx, cancel := context.WithTimeout(ctx, s.settings.StorageTimeout)
		code, err = s.repository.ReserveRedemptionCode(sctx, order.TrackingID, candidate)
		cancel()
		if !errors.Is(err, inerr.ErrDuplicateIdentifier) {
			return code, err
		}
	}

	return "", err
}

func (s *Order) nextCode(ctx context.Context) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, s.settings.StorageTimeout)
	defer cancel()

	code, err := s.generator.NextRedemptionCode(sctx)
	if errors.Is(err, inerr.ErrExhaustedIdentifierSpace) {
		s.logger.Error("redemption code space exhausted", zap.Error(err))
	}

	return code, err
}

func (s *Order) create(ctx context.Context, o entity.Order) error {
	sctx, cancel := context.WithTimeout(ctx, s.settings.StorageTimeout)
	defer cancel()

	return s.repository.Create(sctx, o)
}

func (s *Order) findByTrackingID(ctx context.Context, trackingID string) (entity.Order, error) {
	sctx, cancel := context.WithTimeout(ctx, s.settings.StorageTimeout)
	defer cancel()

	return s.repository.FindByTrackingID(sctx, trackingID)
}

func (s *Order) customer(id string, c entity.Customer) entity.Customer {
	res := s.settings.Customer
	res.ID = id
	if c.Name != "" {
		res.Name = c.Name
	}

	if c.Email != "" {
		res.Email = c.Email
	}

	if c.Phone != "" {
		res.Phone = c.Phone
	}

	return res
}
