package entity

type IdentifierKind string

const (
	IdentifierKindTracking   IdentifierKind = "tracking"
	IdentifierKindRedemption IdentifierKind = "redemption"
)

// Identifier - текущий ключ заказа: временный идентификатор оплаты или код выдачи.
// Допустим только переход Tracking -> Redemption (см. Identifier.Redeem).
type Identifier struct {
	Kind  IdentifierKind `json:"kind"`
	Value string         `json:"value"`
}

func Tracking(v string) Identifier {
	return Identifier{Kind: IdentifierKindTracking, Value: v}
}

func Redemption(v string) Identifier {
	return Identifier{Kind: IdentifierKindRedemption, Value: v}
}

func (i Identifier) String() string {
	return i.Value
}

func (i Identifier) IsTracking() bool {
	return i.Kind == IdentifierKindTracking
}

// Redeem возвращает идентификатор выдачи с кодом code. Для идентификатора, который
// уже является кодом выдачи, возвращает его без изменений.
func (i Identifier) Redeem(code string) Identifier {
	if !i.IsTracking() {
		return i
	}

	return Redemption(code)
}
