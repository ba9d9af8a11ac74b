package file

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/state"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const (
	Backend = "file"

	filePerm = 0o644
	dirPerm  = 0o755
)

// StateStore keeps the document in a local JSON file. Writes go through a
// temporary file in the same directory followed by a rename.
type StateStore struct {
	path             string
	defaultChannelID int64
	logger           *slog.Logger

	mu          sync.Mutex
	lastPayload []byte
}

func NewStateStore(path string, defaultChannelID int64, logger *slog.Logger) *StateStore {
	return &StateStore{
		path:             path,
		defaultChannelID: defaultChannelID,
		logger:           logger,
	}
}

func (s *StateStore) Read(_ context.Context) (*models.Registry, error) {
	start := time.Now()
	defer func() { metrics.RecordStateOperation(Backend, "read", time.Since(start)) }()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Файл состояния не найден, начинаем с пустого реестра", "path", s.path)

		return models.NewRegistry(s.defaultChannelID), nil
	}

	if err != nil {
		return nil, errors.Wrapf(err, "чтение файла состояния %s", s.path)
	}

	reg, err := state.Decode(data, s.defaultChannelID, s.logger)
	if err != nil {
		return nil, errors.Wrapf(err, "разбор файла состояния %s", s.path)
	}

	s.mu.Lock()
	s.lastPayload = state.Encode(reg)
	s.mu.Unlock()

	return reg, nil
}

func (s *StateStore) Write(_ context.Context, reg *models.Registry) error {
	start := time.Now()
	defer func() { metrics.RecordStateOperation(Backend, "write", time.Since(start)) }()

	payload := state.Encode(reg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastPayload != nil && bytes.Equal(payload, s.lastPayload) {
		metrics.RecordStateWrite(Backend, "skipped")
		return nil
	}

	if err := writeAtomic(s.path, payload); err != nil {
		metrics.RecordStateWrite(Backend, metrics.StatusError)
		return err
	}

	s.lastPayload = payload

	metrics.RecordStateWrite(Backend, "written")
	s.logger.Debug("Состояние сохранено в файл", "path", s.path, "bytes", len(payload))

	return nil
}

func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrapf(err, "создание каталога %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.Wrapf(err, "создание временного файла для %s", path)
	}

	tmpPath := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		return errors.Wrapf(err, "запись временного файла для %s", path)
	}

	if err := tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync временного файла для %s", path)
	}

	if err := tmp.Chmod(filePerm); err != nil {
		return errors.Wrapf(err, "chmod временного файла для %s", path)
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "закрытие временного файла для %s", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "переименование временного файла в %s", path)
	}

	return nil
}
