package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ivanpodgorny/printshop/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ValidatorMock struct {
	mock.Mock
}

func (m *ValidatorMock) Struct(_ context.Context, s any) error {
	args := m.Called(s)

	return args.Error(0)
}

func (m *ValidatorMock) Var(_ context.Context, field any, tag string) error {
	args := m.Called(field, tag)

	return args.Error(0)
}

type requestOption func(r *http.Request) *http.Request

func withHeader(key, value string) requestOption {
	return func(r *http.Request) *http.Request {
		r.Header.Set(key, value)

		return r
	}
}

func withURLParam(key, value string) requestOption {
	return func(r *http.Request) *http.Request {
		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			rctx = chi.NewRouteContext()
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
		}

		rctx.URLParams.Add(key, value)

		return r
	}
}

func sendTestRequest(method string, body io.Reader, handler http.HandlerFunc, opts ...requestOption) *http.Response {
	request := httptest.NewRequest(method, "/", body)
	for _, opt := range opts {
		request = opt(request)
	}

	w := httptest.NewRecorder()
	handler(w, request)

	return w.Result()
}

func newTestValidator(t *testing.T) *validator.Validator {
	t.Helper()

	engine, err := validator.NewEngine()
	require.NoError(t, err)

	return validator.New(engine)
}

type formFile struct {
	name    string
	content string
}

func multipartForm(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, requestOption) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	for _, f := range files {
		part, err := mw.CreateFormFile(documentsField, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	return body, withHeader("Content-Type", mw.FormDataContentType())
}
