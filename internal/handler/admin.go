package handler

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ivanpodgorny/printshop/internal/entity"
	inerr "github.com/ivanpodgorny/printshop/internal/errors"
)

// Admin - точки доступа оператора пункта печати.
type Admin struct {
	orders OrderFinder
	files  FileOpener
}

type OrderFinder interface {
	Lookup(ctx context.Context, code string) (entity.Order, error)
}

type FileOpener interface {
	Open(identifier, name string) (*os.File, error)
}

func NewAdmin(o OrderFinder, f FileOpener) *Admin {
	return &Admin{
		orders: o,
		files:  f,
	}
}

// Get возвращает заказ по коду выдачи.
func (h *Admin) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Lookup(r.Context(), chi.URLParam(r, "code"))
	if errors.Is(err, inerr.ErrOrderNotFound) {
		notFound(w)

		return
	} else if err != nil {
		serverError(w)

		return
	}

	responseAsJSON(w, order, http.StatusOK)
}

// Download отдает файл заказа.
func (h *Admin) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, err := h.files.Open(chi.URLParam(r, "code"), name)
	if err != nil {
		notFound(w)

		return
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		notFound(w)

		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
