package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/pkg/atomicfile"
	"github.com/wonny/swing/pkg/logger"
)

// LoadOptions controls corrupt-file handling
type LoadOptions struct {
	// Strict returns *CorruptError instead of recovering with an empty ledger
	Strict bool

	// Today names the backup of a corrupt file (<path>.corrupt-<today>)
	Today time.Time

	Logger *logger.Logger
}

// Load reads the ledger at path. A missing file yields an empty ledger.
//
// A file that cannot be read or parsed is a *CorruptError. Unless Strict is
// set, the error is logged and an empty ledger with Recovered() == true is
// returned. The bad file stays in place until Save moves it aside.
func Load(path string, opts LoadOptions) (*Ledger, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithField("ledger", path)

	rows, err := read(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("Ledger not found, starting empty")
		return New(), nil
	}
	if err != nil {
		corrupt := &CorruptError{Path: path, Err: err}
		if opts.Strict {
			return nil, corrupt
		}

		log.WithError(corrupt).Error("Ledger is corrupt, continuing with an empty ledger")
		return &Ledger{recovered: true, corrupt: corrupt, day: contracts.Day(opts.Today)}, nil
	}

	migrated, changed := EnsureSchema(rows)
	if changed > 0 {
		log.WithField("rows", changed).Info("Ledger rows migrated to canonical schema")
	}

	l := &Ledger{records: migrated}
	if err := l.Validate(); err != nil {
		// 과거 데이터: 가장 최근 진입 행만 open으로 취급
		log.WithError(err).Warn("Ledger has stale open rows")
	}
	return l, nil
}

// Save writes the full ledger to path with an atomic replace.
// After a lenient recovery the corrupt file at path is first renamed to
// <path>.corrupt-<today>; it is moved back if the write fails.
func (l *Ledger) Save(path string) error {
	data, err := Encode(l.records)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	if l.corrupt == nil || l.corrupt.Backup != "" || l.corrupt.Path != path {
		return atomicfile.WriteFile(path, data)
	}

	backup, err := preserve(path, l.day)
	if err != nil {
		return fmt.Errorf("preserve corrupt ledger: %w", err)
	}
	if err := atomicfile.WriteFile(path, data); err != nil {
		if restoreErr := os.Rename(backup, path); restoreErr != nil {
			return fmt.Errorf("%w (restore %s failed: %v)", err, backup, restoreErr)
		}
		return err
	}
	l.corrupt.Backup = backup
	return nil
}

func read(path string) ([]contracts.PositionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return Decode(bytes.NewReader(data))
}

// preserve moves a corrupt file aside without overwriting earlier backups
func preserve(path string, today time.Time) (string, error) {
	base := fmt.Sprintf("%s.corrupt-%s", path, today.Format(contracts.DateLayout))
	backup := base
	for n := 1; ; n++ {
		if _, err := os.Lstat(backup); errors.Is(err, fs.ErrNotExist) {
			break
		}
		backup = fmt.Sprintf("%s.%d", base, n)
	}
	if err := os.Rename(path, backup); err != nil {
		return "", err
	}
	return backup, nil
}
