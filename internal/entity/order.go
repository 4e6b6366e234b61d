package entity

import "time"

type Order struct {
	Identifier     Identifier  `json:"identifier"`
	TrackingID     string      `json:"tracking_id,omitempty"`
	RedemptionCode string      `json:"redemption_code,omitempty"`
	PayMethod      PayMethod   `json:"pay_method"`
	FilePaths      []string    `json:"files"`
	Options        Options     `json:"options"`
	Price          float64     `json:"price"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	PaidAt         *time.Time  `json:"paid_at,omitempty"`
}

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
)

type PayMethod string

const (
	PayMethodDeferred PayMethod = "deferred"
	PayMethodPrepaid  PayMethod = "prepaid"
)

// ParsePayMethod принимает как значения API, так и значения, которые отправляет
// веб-интерфейс (payLater/payNow).
func ParsePayMethod(s string) (PayMethod, bool) {
	switch s {
	case "payLater", string(PayMethodDeferred):
		return PayMethodDeferred, true
	case "payNow", string(PayMethodPrepaid):
		return PayMethodPrepaid, true
	}

	return "", false
}

// IsPaid сообщает, что заказ уже прошел переход в статус оплаченного.
func (o Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// NewDeferredOrder создает заказ с оплатой при получении. Код выдачи назначается
// сразу и больше не меняется.
func NewDeferredOrder(code string, files []string, opts Options, price float64) Order {
	return Order{
		Identifier:     Redemption(code),
		RedemptionCode: code,
		PayMethod:      PayMethodDeferred,
		FilePaths:      files,
		Options:        opts,
		Price:          price,
		Status:         OrderStatusPending,
	}
}

// NewPrepaidOrder создает заказ с онлайн-оплатой под временным идентификатором.
func NewPrepaidOrder(trackingID string, files []string, opts Options, price float64) Order {
	return Order{
		Identifier: Tracking(trackingID),
		TrackingID: trackingID,
		PayMethod:  PayMethodPrepaid,
		FilePaths:  files,
		Options:    opts,
		Price:      price,
		Status:     OrderStatusPending,
	}
}
