package validator

import (
	"context"
	"reflect"

	v10validator "github.com/go-playground/validator/v10"
	"github.com/ivanpodgorny/printshop/internal/pricing"
)

type Validator struct {
	engine Engine
}

type Engine interface {
	StructCtx(ctx context.Context, s any) error
	VarCtx(ctx context.Context, field any, tag string) error
}

func New(e Engine) *Validator {
	return &Validator{engine: e}
}

// NewEngine создает движок валидации с зарегистрированными правилами сервиса.
func NewEngine() (*v10validator.Validate, error) {
	engine := v10validator.New()
	if err := engine.RegisterValidation("pageselection", PageSelection); err != nil {
		return nil, err
	}

	return engine, nil
}

func (v *Validator) Struct(ctx context.Context, s any) error {
	return v.engine.StructCtx(ctx, s)
}

func (v *Validator) Var(ctx context.Context, field any, tag string) error {
	return v.engine.VarCtx(ctx, field, tag)
}

// PageSelection проверяет формат выбора страниц: "all", "All Pages", "1-3,5"
// или "Custom: 1-3,5".
func PageSelection(fl v10validator.FieldLevel) bool {
	val := fl.Field()
	if val.Kind() != reflect.String {
		return false
	}

	return pricing.ValidSelection(val.String())
}
