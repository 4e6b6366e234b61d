package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ivanpodgorny/printshop/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type ConfirmerMock struct {
	mock.Mock
}

func (m *ConfirmerMock) Confirm(_ context.Context, trackingID string) (string, error) {
	args := m.Called(trackingID)

	return args.String(0), args.Error(1)
}

func TestPaymentConfirmer_Do(t *testing.T) {
	var (
		ctx, cancel = context.WithCancel(context.Background())
		service     = &ConfirmerMock{}
		queue       = make(chan entity.PaymentConfirmation, 4)
		jobs        = []entity.PaymentConfirmation{
			{TrackingID: "cf_1700000000000a1b2c3d4"},
			{TrackingID: "cf_1700000000001e5f6a7b8"},
			{TrackingID: "cf_1700000000002c9d0e1f2"},
			{TrackingID: "cf_1700000000003a3b4c5d6"},
		}
	)

	defer close(queue)

	for i, j := range jobs {
		queue <- j
		if i == len(jobs)-1 {
			service.On("Confirm", j.TrackingID).Return("", errors.New("")).Once()

			continue
		}

		service.On("Confirm", j.TrackingID).Return("123456", nil).Once()
	}
	confirmer := NewPaymentConfirmer(service, queue, &sync.WaitGroup{}, 4, zap.NewNop())

	confirmer.Do(ctx)

	assert.Eventually(
		t,
		func() bool { return len(queue) == 0 },
		100*time.Millisecond,
		10*time.Millisecond,
		"успешная обработка очереди",
	)

	cancel()
	confirmer.wg.Wait()
	for _, j := range jobs {
		queue <- j
	}
	assert.Equal(t, 4, len(queue), "корректное завершение работы при отмене контекста")

	service.AssertExpectations(t)
}
