package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/life-assistant/internal/config"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/bnema/life-assistant/internal/ports"
	"github.com/spf13/viper"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS change_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TEXT NOT NULL,
	action_type TEXT NOT NULL,
	action TEXT NOT NULL,
	result TEXT NOT NULL,
	success INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_change_log_action_type ON change_log(action_type);
`

type Store struct {
	db *sql.DB
}

var _ ports.ChangeLog = (*Store)(nil)

func NewStore(cfg *viper.Viper) (*Store, error) {
	path, err := config.Path(cfg, config.KeyChangeLogPath)
	if err != nil {
		return nil, err
	}

	return Open(path)
}

// Open opens or creates the change log database at path. ":memory:" is accepted for tests.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("change log path cannot be empty")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create change log directory: %w", err)
		}
		if err := ensurePrivateFile(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open change log: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure change log (%s): %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize change log schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Append(ctx context.Context, entry domain.ChangeEntry) error {
	success := 0
	if entry.Success {
		success = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO change_log (recorded_at, action_type, action, result, success) VALUES (?, ?, ?, ?, ?)`,
		entry.RecordedAt, entry.ActionType, entry.Action, entry.Result, success,
	)
	if err != nil {
		return fmt.Errorf("append change log entry: %w", err)
	}

	return nil
}

func (s *Store) Tail(ctx context.Context, n int) ([]domain.ChangeEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recorded_at, action_type, action, result, success FROM change_log ORDER BY id DESC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var entries []domain.ChangeEntry
	for rows.Next() {
		var entry domain.ChangeEntry
		var success int
		if err := rows.Scan(&entry.ID, &entry.RecordedAt, &entry.ActionType, &entry.Action, &entry.Result, &success); err != nil {
			return nil, fmt.Errorf("scan change log entry: %w", err)
		}
		entry.Success = success != 0
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change log: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func ensurePrivateFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat change log: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("create change log: %w", err)
	}

	return f.Close()
}
