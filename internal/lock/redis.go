package lock

import (
	"context"
	"errors"
	"time"

	"github.com/ivanpodgorny/printshop/internal/security"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("lock is held by another process")

const (
	defaultPrefix = "printshop:lock:order:"
	retryInterval = 50 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

// Redis - распределенная блокировка на основе SET NX PX. Снятие блокировки выполняется
// скриптом, который удаляет ключ, только если он принадлежит владельцу.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb redis.Cmdable, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Redis{
		rdb:    rdb,
		prefix: defaultPrefix,
		ttl:    ttl,
	}
}

// Lock ожидает освобождения блокировки key до отмены ctx и захватывает ее. Возвращает
// функцию для снятия блокировки.
func (l *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token, err := security.RandomBytes(16)
	if err != nil {
		return nil, err
	}

	k := l.prefix + key
	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}

		if ok {
			return func() {
				_ = releaseScript.Run(context.Background(), l.rdb, []string{k}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

// Noop используется, когда Redis не настроен. Согласованность перехода в статус
// оплаченного в этом случае обеспечивается условным обновлением в хранилище.
type Noop struct{}

func (Noop) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
