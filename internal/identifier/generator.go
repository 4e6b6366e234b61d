package identifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	inerr "github.com/ivanpodgorny/printshop/internal/errors"
	"github.com/ivanpodgorny/printshop/internal/security"
)

const (
	TrackingPrefix = "cf_"

	codeMin     = 100000
	codeMax     = 999999
	maxAttempts = 50
)

// Generator выдает коды выдачи заказов и временные идентификаторы для оплаты.
type Generator struct {
	store  Store
	random func(min, max int64) (int64, error)
	now    func() time.Time
}

type Store interface {
	Exists(ctx context.Context, code string) (bool, error)
}

func NewGenerator(s Store) *Generator {
	return &Generator{
		store:  s,
		random: security.RandomInt,
		now:    time.Now,
	}
}

// NextRedemptionCode возвращает шестизначный код выдачи, не занятый ни одним заказом.
// Если за maxAttempts попыток свободный код не найден, возвращает ошибку
// errors.ErrExhaustedIdentifierSpace.
func (g *Generator) NextRedemptionCode(ctx context.Context) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		n, err := g.random(codeMin, codeMax)
		if err != nil {
			return "", err
		}

		code := strconv.FormatInt(n, 10)
		exists, err := g.store.Exists(ctx, code)
		if err != nil {
			return "", err
		}

		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: no free code after %d attempts", inerr.ErrExhaustedIdentifierSpace, maxAttempts)
}

// NextTrackingID возвращает временный идентификатор заказа с онлайн-оплатой
// вида cf_<миллисекунды><8 случайных символов>.
func (g *Generator) NextTrackingID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	return TrackingPrefix + strconv.FormatInt(g.now().UnixMilli(), 10) + suffix
}

// IsTrackingID сообщает, похоже ли значение на временный идентификатор.
func IsTrackingID(id string) bool {
	return strings.HasPrefix(id, TrackingPrefix)
}
