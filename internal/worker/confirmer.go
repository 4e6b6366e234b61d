package worker

import (
	"context"
	"sync"

	"github.com/ivanpodgorny/printshop/internal/entity"
	"go.uber.org/zap"
)

// PaymentConfirmer получает подтверждения оплаты из уведомлений платежного шлюза и
// переводит заказы в статус оплаченного. Для обработки очереди создается
// PaymentConfirmer.workersCount воркеров.
type PaymentConfirmer struct {
	service      Confirmer
	queue        <-chan entity.PaymentConfirmation
	wg           *sync.WaitGroup
	workersCount int
	logger       *zap.Logger
}

type Confirmer interface {
	Confirm(ctx context.Context, trackingID string) (string, error)
}

func NewPaymentConfirmer(
	s Confirmer,
	q <-chan entity.PaymentConfirmation,
	wg *sync.WaitGroup,
	w int,
	logger *zap.Logger,
) *PaymentConfirmer {
	return &PaymentConfirmer{
		service:      s,
		queue:        q,
		wg:           wg,
		workersCount: w,
		logger:       logger,
	}
}

func (c *PaymentConfirmer) Do(ctx context.Context) {
	for i := 0; i < c.workersCount; i++ {
		c.wg.Add(1)

		go c.worker(ctx)
	}
}

func (c *PaymentConfirmer) worker(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case job, ok := <-c.queue:
			if !ok {
				return
			}

			code, err := c.service.Confirm(ctx, job.TrackingID)
			if err != nil {
				c.logger.Error("payment confirmation failed", zap.String("tracking_id", job.TrackingID), zap.Error(err))

				continue
			}

			c.logger.Debug("payment confirmed", zap.String("tracking_id", job.TrackingID), zap.String("code", code))
		case <-ctx.Done():
			return
		}
	}
}
