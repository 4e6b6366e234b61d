package entity

type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// PaymentEvent - подтвержденное событие платежного шлюза.
type PaymentEvent struct {
	TrackingID string
	Success    bool
}

// PaymentConfirmation - задача на перевод заказа в статус оплаченного.
type PaymentConfirmation struct {
	TrackingID string
}
