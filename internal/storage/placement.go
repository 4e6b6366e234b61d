package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	inerr "github.com/ivanpodgorny/printshop/internal/errors"
)

// Placement хранит документы заказов в каталогах, названных по текущему
// идентификатору заказа: <root>/<identifier>/<имя файла>.
type Placement struct {
	root string
}

// Incoming - загруженный клиентом файл.
type Incoming interface {
	Name() string
	Open() (io.ReadCloser, error)
}

func NewPlacement(root string) *Placement {
	return &Placement{root: root}
}

// Place создает каталог заказа и сохраняет в него файлы под исходными именами.
// Одноименные файлы получают суффикс " (n)". Если каталог identifier уже существует,
// возвращает ошибку errors.ErrDuplicateIdentifier и не изменяет его. При любой другой
// ошибке файловой системы созданный каталог удаляется и возвращается ошибка
// errors.ErrStorageFailure.
func (p *Placement) Place(identifier string, files []Incoming) ([]string, error) {
	dir, err := p.dir(identifier)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.root, 0o750); err != nil {
		return nil, storageFailure(err)
	}

	if err := os.Mkdir(dir, 0o750); errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: directory %q already exists", inerr.ErrDuplicateIdentifier, identifier)
	} else if err != nil {
		return nil, storageFailure(err)
	}

	var (
		paths = make([]string, 0, len(files))
		used  = make(map[string]struct{}, len(files))
	)
	for _, f := range files {
		name := uniqueName(sanitizeName(f.Name()), used)
		path := filepath.Join(dir, name)
		if err := copyFile(path, f); err != nil {
			_ = os.RemoveAll(dir)

			return nil, storageFailure(err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// Relocate переименовывает каталог oldIdentifier в newIdentifier и возвращает пути
// файлов в новом каталоге. Если каталога oldIdentifier нет (перенос уже выполнен),
// ничего не делает и возвращает paths без изменений. Непустой каталог newIdentifier
// не перезаписывается: возвращается ошибка errors.ErrDuplicateIdentifier.
func (p *Placement) Relocate(oldIdentifier, newIdentifier string, paths []string) ([]string, error) {
	oldDir, err := p.dir(oldIdentifier)
	if err != nil {
		return nil, err
	}

	newDir, err := p.dir(newIdentifier)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(oldDir); errors.Is(err, os.ErrNotExist) {
		return paths, nil
	} else if err != nil {
		return nil, storageFailure(err)
	}

	if err := os.Rename(oldDir, newDir); err != nil {
		// Каталог мог быть перенесен параллельным запросом.
		if errors.Is(err, os.ErrNotExist) {
			return paths, nil
		}

		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: directory %q already exists", inerr.ErrDuplicateIdentifier, newIdentifier)
		}

		return nil, storageFailure(err)
	}

	return p.Rebind(newIdentifier, paths), nil
}

// Rebind возвращает пути файлов, перенесенные в каталог identifier. Файловая
// система не изменяется.
func (p *Placement) Rebind(identifier string, paths []string) []string {
	dir := filepath.Join(p.root, identifier)
	res := make([]string, len(paths))
	for i, path := range paths {
		res[i] = filepath.Join(dir, filepath.Base(path))
	}

	return res
}

// Exists сообщает, существует ли каталог заказа.
func (p *Placement) Exists(identifier string) bool {
	dir, err := p.dir(identifier)
	if err != nil {
		return false
	}

	info, err := os.Stat(dir)

	return err == nil && info.IsDir()
}

// Discard удаляет каталог заказа вместе с файлами.
func (p *Placement) Discard(identifier string) error {
	dir, err := p.dir(identifier)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return storageFailure(err)
	}

	return nil
}

// Open открывает файл name из каталога заказа identifier.
func (p *Placement) Open(identifier, name string) (*os.File, error) {
	dir, err := p.dir(identifier)
	if err != nil {
		return nil, err
	}

	if name != filepath.Base(name) || name == "." || name == ".." {
		return nil, os.ErrNotExist
	}

	return os.Open(filepath.Join(dir, name))
}

func (p *Placement) dir(identifier string) (string, error) {
	if identifier == "" || identifier != filepath.Base(identifier) || identifier == "." || identifier == ".." {
		return "", fmt.Errorf("%w: invalid identifier %q", inerr.ErrStorageFailure, identifier)
	}

	return filepath.Join(p.root, identifier), nil
}

func copyFile(path string, f Incoming) (err error) {
	src, err := f.Open()
	if err != nil {
		return err
	}

	defer func(src io.ReadCloser) {
		_ = src.Close()
	}(src)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return err
	}

	defer func(dst *os.File) {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
	}(dst)

	_, err = io.Copy(dst, src)

	return err
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		return "document"
	}

	return name
}

func uniqueName(name string, used map[string]struct{}) string {
	candidate := name
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		if _, ok := used[candidate]; !ok {
			used[candidate] = struct{}{}

			return candidate
		}

		candidate = base + " (" + strconv.Itoa(i) + ")" + ext
	}
}

func storageFailure(err error) error {
	return fmt.Errorf("%w: %v", inerr.ErrStorageFailure, err)
}
