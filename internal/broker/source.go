package broker

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// FileSource adapts a downloaded export file to the pipeline's source
// interface. The file is re-read on every run; transactions at or
// before the given watermark are filtered out so re-imports do not
// duplicate trades.
type FileSource struct {
	path string
	hint Format

	normalizer *Normalizer
}

func NewFileSource(log *slog.Logger, path string, hint Format) *FileSource {
	return &FileSource{
		path:       path,
		hint:       hint,
		normalizer: NewNormalizer(log),
	}
}

func (s *FileSource) Name() string {
	return "file:" + filepath.Base(s.path)
}

func (s *FileSource) Transactions(ctx context.Context, after time.Time) ([]journal.Transaction, error) {
	txs, err := s.normalizer.ParseFile(s.path, s.hint)
	if err != nil {
		return nil, err
	}

	if after.IsZero() {
		return txs, nil
	}

	fresh := txs[:0]
	for _, tx := range txs {
		if tx.Time.After(after) {
			fresh = append(fresh, tx)
		}
	}

	return fresh, nil
}
