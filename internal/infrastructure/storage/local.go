// Package storage хранит загруженные файлы на локальном диске
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidName - имя файла выходит за пределы каталога хранилища
var ErrInvalidName = errors.New("invalid file name")

// LocalStore сохраняет файлы в каталог и отдает публичный URL
type LocalStore struct {
	dir        string
	publicPath string
}

// NewLocalStore создает каталог, если его нет
func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir upload dir: %w", err)
	}
	return &LocalStore{dir: dir, publicPath: strings.TrimRight(publicPath, "/")}, nil
}

// Dir возвращает каталог для раздачи статики
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) localPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Save записывает содержимое во временный файл и переименовывает его,
// чтобы по URL никогда не отдавался недописанный файл
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	target, err := s.localPath(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename file: %w", err)
	}

	return path.Join(s.publicPath, name), nil
}

// Delete удаляет файл; отсутствие файла ошибкой не считается
func (s *LocalStore) Delete(_ context.Context, name string) error {
	target, err := s.localPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
