package handler

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ivanpodgorny/printshop/internal/entity"
)

type QuoteRequest struct {
	Options    entity.Options `json:"options"`
	PageCounts []int          `json:"pageCounts" validate:"required,min=1,dive,min=1,max=10000"`
}

type Validator interface {
	Struct(ctx context.Context, s any) error
	Var(ctx context.Context, field any, tag string) error
}

// uploadedFile адаптирует файл из multipart-формы к storage.Incoming.
type uploadedFile struct {
	header *multipart.FileHeader
}

func (f uploadedFile) Name() string {
	return f.header.Filename
}

func (f uploadedFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

func readJSONBody(v any, r *http.Request) error {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, v)
}
