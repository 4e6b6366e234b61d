package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/ivanpodgorny/printshop/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type EngineMock struct {
	mock.Mock
}

func (m *EngineMock) StructCtx(_ context.Context, s any) error {
	args := m.Called(s)

	return args.Error(0)
}

func (m *EngineMock) VarCtx(_ context.Context, field any, tag string) error {
	args := m.Called(field, tag)

	return args.Error(0)
}

func TestValidator_Struct(t *testing.T) {
	type ValidatedStruct struct {
		Name string `validate:"required"`
	}

	var (
		ctx           = context.Background()
		engine        = &EngineMock{}
		validStruct   = &ValidatedStruct{Name: "name"}
		invalidStruct = &ValidatedStruct{}
	)
	engine.On("StructCtx", validStruct).Return(nil).Once()
	engine.On("StructCtx", invalidStruct).Return(errors.New("")).Once()
	v := &Validator{engine: engine}

	assert.NoError(t, v.Struct(ctx, validStruct))
	assert.Error(t, v.Struct(ctx, invalidStruct))
	engine.AssertExpectations(t)
}

func TestValidator_Var(t *testing.T) {
	var (
		ctx        = context.Background()
		engine     = &EngineMock{}
		tag        = "len=6,numeric"
		validStr   = "123456"
		invalidStr = "12a456"
	)
	engine.On("VarCtx", validStr, tag).Return(nil).Once()
	engine.On("VarCtx", invalidStr, tag).Return(errors.New("")).Once()
	v := &Validator{engine: engine}

	assert.NoError(t, v.Var(ctx, validStr, tag))
	assert.Error(t, v.Var(ctx, invalidStr, tag))
	engine.AssertExpectations(t)
}

func TestPageSelection(t *testing.T) {
	var (
		ctx = context.Background()
		tag = "pageselection"
	)
	engine, err := NewEngine()
	require.NoError(t, err)
	v := New(engine)

	tests := []struct {
		name      string
		selection string
		valid     bool
	}{
		{
			name:      "все страницы",
			selection: "All Pages",
			valid:     true,
		},
		{
			name:      "выбранные страницы",
			selection: "Custom: 1-3,5",
			valid:     true,
		},
		{
			name:      "некорректный диапазон",
			selection: "Custom: 3-1",
			valid:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, v.Var(ctx, tt.selection, tag) == nil)
		})
	}
}

func TestOptionsValidation(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine()
	require.NoError(t, err)
	v := New(engine)

	valid := entity.Options{
		Copies:        1,
		PageSelection: "all",
		ColorMode:     entity.ColorModeBW,
		Orientation:   entity.OrientationPortrait,
		PagesPerSheet: 2,
	}
	assert.NoError(t, v.Struct(ctx, valid), "корректные параметры печати")

	invalid := valid
	invalid.Copies = 0
	assert.Error(t, v.Struct(ctx, invalid), "количество копий должно быть больше нуля")

	invalid = valid
	invalid.ColorMode = "sepia"
	assert.Error(t, v.Struct(ctx, invalid), "неизвестный режим печати")

	invalid = valid
	invalid.PagesPerSheet = 3
	assert.Error(t, v.Struct(ctx, invalid), "недопустимое количество страниц на листе")
}
