package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ivanpodgorny/printshop/internal/entity"
	inerr "github.com/ivanpodgorny/printshop/internal/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Order struct {
	db *sql.DB
}

const selectOrder = `
SELECT identifier, identifier_kind, tracking_id, redemption_code, pay_method, file_paths, options, price, status, created_at, paid_at
FROM orders
`

func NewOrder(db *sql.DB) *Order {
	return &Order{db: db}
}

// Exists проверяет, используется ли code как идентификатор или зарезервированный
// код выдачи какого-либо заказа.
func (r *Order) Exists(ctx context.Context, code string) (bool, error) {
	exists := false
	err := r.db.QueryRowContext(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM orders WHERE identifier = $1 OR redemption_code = $1)",
		code,
	).Scan(&exists)

	return exists, storeError(ctx, err)
}

// Create сохраняет новый заказ. Если идентификатор, временный идентификатор или код
// выдачи уже заняты, возвращает ошибку errors.ErrDuplicateIdentifier.
func (r *Order) Create(ctx context.Context, o entity.Order) error {
	files, err := json.Marshal(o.FilePaths)
	if err != nil {
		return err
	}

	opts, err := json.Marshal(o.Options)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO orders (identifier, identifier_kind, tracking_id, redemption_code, pay_method, file_paths, options, price, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.Identifier.Value,
		o.Identifier.Kind,
		nullString(o.TrackingID),
		nullString(o.RedemptionCode),
		o.PayMethod,
		files,
		opts,
		o.Price,
		o.Status,
	)
	if isUniqueViolation(err) {
		return inerr.ErrDuplicateIdentifier
	}

	return storeError(ctx, err)
}

// FindByIdentifier возвращает заказ по текущему идентификатору. Если заказ не найден,
// возвращает ошибку errors.ErrOrderNotFound.
func (r *Order) FindByIdentifier(ctx context.Context, id string) (entity.Order, error) {
	return r.findOne(ctx, selectOrder+"WHERE identifier = $1", id)
}

// FindByTrackingID возвращает заказ с онлайн-оплатой по временному идентификатору,
// в том числе после замены идентификатора на код выдачи.
func (r *Order) FindByTrackingID(ctx context.Context, trackingID string) (entity.Order, error) {
	return r.findOne(ctx, selectOrder+"WHERE tracking_id = $1", trackingID)
}

// ReserveRedemptionCode закрепляет за заказом код выдачи candidate, если код еще
// не был закреплен, и возвращает закрепленный код. Повторные вызовы возвращают
// код, закрепленный первым вызовом.
func (r *Order) ReserveRedemptionCode(ctx context.Context, trackingID, candidate string) (string, error) {
	code := ""
	err := r.db.QueryRowContext(
		ctx,
		"UPDATE orders SET redemption_code = coalesce(redemption_code, $2) WHERE tracking_id = $1 RETURNING redemption_code",
		trackingID,
		candidate,
	).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", inerr.ErrOrderNotFound
	}

	if isUniqueViolation(err) {
		return "", inerr.ErrDuplicateIdentifier
	}

	return code, storeError(ctx, err)
}

// UpdateIdentifierAndStatus заменяет идентификатор неоплаченного заказа oldID на код
// выдачи newID, переводит заказ в статус оплаченного и сохраняет новые пути файлов
// одним запросом. Если неоплаченного заказа с идентификатором oldID нет, возвращает
// ошибку errors.ErrOrderNotFound.
func (r *Order) UpdateIdentifierAndStatus(ctx context.Context, oldID, newID string, files []string) error {
	b, err := json.Marshal(files)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(
		ctx,
		`UPDATE orders
SET identifier = $2, identifier_kind = 'redemption', status = 'paid', file_paths = $3, paid_at = now()
WHERE identifier = $1
  AND status = 'pending'`,
		oldID,
		newID,
		b,
	)
	if isUniqueViolation(err) {
		return inerr.ErrDuplicateIdentifier
	}

	if err != nil {
		return storeError(ctx, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return inerr.ErrOrderNotFound
	}

	return nil
}

func (r *Order) findOne(ctx context.Context, query string, arg string) (entity.Order, error) {
	var (
		o              entity.Order
		trackingID     sql.NullString
		redemptionCode sql.NullString
		paidAt         sql.NullTime
		files          []byte
		opts           []byte
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&o.Identifier.Value,
		&o.Identifier.Kind,
		&trackingID,
		&redemptionCode,
		&o.PayMethod,
		&files,
		&opts,
		&o.Price,
		&o.Status,
		&o.CreatedAt,
		&paidAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Order{}, inerr.ErrOrderNotFound
	}

	if err != nil {
		return entity.Order{}, storeError(ctx, err)
	}

	if err := json.Unmarshal(files, &o.FilePaths); err != nil {
		return entity.Order{}, err
	}

	if err := json.Unmarshal(opts, &o.Options); err != nil {
		return entity.Order{}, err
	}

	o.TrackingID = trackingID.String
	o.RedemptionCode = redemptionCode.String
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}

	return o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// storeError приводит ошибки хранилища к errors.ErrStorageTimeout или
// errors.ErrStorageFailure.
func storeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", inerr.ErrStorageTimeout, err)
	}

	return fmt.Errorf("%w: %v", inerr.ErrStorageFailure, err)
}
