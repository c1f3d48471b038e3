// Package gamelog keeps a local SQLite history of notable lines from the
// VRChat client log: video playback errors and players joining or leaving.
package gamelog

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/angelware-net/spectre/common"
	"github.com/angelware-net/spectre/pkg/logger"
	_ "modernc.org/sqlite"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000

	timeLayout = "2006-01-02 15:04:05"
)

var ErrInvalidType = errors.New("invalid log type")

const schema = `
CREATE TABLE IF NOT EXISTS log (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	time    TEXT NOT NULL,
	type    TEXT NOT NULL,
	message TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS log_type_idx ON log (type, id);
`

// Entry is one stored event.
type Entry struct {
	ID      int64
	Time    time.Time
	Type    Type
	Message string
}

// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

// Open opens or creates dir/spectre.db.
func Open(dir string, l logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error: cannot create game log directory: %w", err)
	}
	return OpenFile(filepath.Join(dir, common.GameLogFile), l)
}

// OpenFile opens the database at path.
func OpenFile(path string, l logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("error: cannot open game log database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error: cannot create game log schema: %w", err)
	}
	return &Store{
		db:  db,
		log: logger.OrNop(l),
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Add stores line when it is a tracked event. stored reports whether it was.
func (s *Store) Add(ctx context.Context, line string) (stored bool, err error) {
	msg, typ, ok := Classify(line)
	if !ok {
		return false, nil
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO log (time, type, message) VALUES (?, ?, ?)",
		s.now().Format(timeLayout), string(typ), msg)
	if err != nil {
		return false, fmt.Errorf("error: failed to insert game log entry: %w", err)
	}
	s.log.Info("gamelog: %s", typ)
	return true, nil
}

// Ingest reads r line by line and stores the tracked ones. It returns how
// many lines were stored.
func (s *Store) Ingest(ctx context.Context, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		ok, err := s.Add(ctx, sc.Text())
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("error: failed to read game log: %w", err)
	}
	return n, nil
}

// List returns up to limit entries, newest first, optionally filtered by
// type. A limit of zero or less means DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int, typ Type) ([]Entry, error) {
	if typ != "" && !ValidType(typ) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	var (
		rows *sql.Rows
		err  error
	)
	if typ == "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, time, type, message FROM log ORDER BY id DESC LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, time, type, message FROM log WHERE type = ? ORDER BY id DESC LIMIT ?", string(typ), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("error: failed to query game log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			ts, kind string
		)
		if err := rows.Scan(&e.ID, &ts, &kind, &e.Message); err != nil {
			return nil, fmt.Errorf("error: failed to scan game log row: %w", err)
		}
		e.Type = Type(kind)
		if t, err := time.Parse(timeLayout, ts); err == nil {
			e.Time = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate game log rows: %w", err)
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
