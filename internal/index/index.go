// Package index is the on-disk scan cache. It remembers the combos found in
// each replay so unchanged files are not parsed again.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/suykerbuyk/combo-finder/internal/combo"
	"github.com/suykerbuyk/combo-finder/internal/discover"
	"github.com/suykerbuyk/combo-finder/internal/logging"
)

// Index manages the scan cache database.
type Index struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the cache location under the user cache directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "combo-finder", "scan.db")
}

// Open opens or creates the cache database at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// Dispatcher workers share the handle; one connection serialises writes.
	db.SetMaxOpenConns(1)

	idx := &Index{db: db, path: path}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) init() error {
	schema := `
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS scanned_files (
			path TEXT NOT NULL,
			config_key TEXT NOT NULL,
			size INTEGER NOT NULL,
			mod_time INTEGER NOT NULL,
			scanned_at TEXT NOT NULL,
			PRIMARY KEY (path, config_key)
		);

		CREATE TABLE IF NOT EXISTS combos (
			path TEXT NOT NULL,
			config_key TEXT NOT NULL,
			seq INTEGER NOT NULL,
			start_frame INTEGER NOT NULL,
			end_frame INTEGER NOT NULL,
			PRIMARY KEY (path, config_key, seq)
		);
	`
	if _, err := idx.db.Exec(schema); err != nil {
		return fmt.Errorf("create cache schema: %w", err)
	}
	return nil
}

// Path returns the database file.
func (idx *Index) Path() string {
	return idx.path
}

// Close closes the database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Counts returns the number of cached files and combos.
func (idx *Index) Counts() (files, combos int, err error) {
	if err = idx.db.QueryRow("SELECT COUNT(*) FROM scanned_files").Scan(&files); err != nil {
		return 0, 0, fmt.Errorf("count files: %w", err)
	}
	if err = idx.db.QueryRow("SELECT COUNT(*) FROM combos").Scan(&combos); err != nil {
		return 0, 0, fmt.Errorf("count combos: %w", err)
	}
	return files, combos, nil
}

// Scoped returns a view of the cache for one detection configuration,
// identified by combo.Config.Key.
func (idx *Index) Scoped(configKey string, log logging.Interface) *Scoped {
	if log == nil {
		log = logging.Nop()
	}
	return &Scoped{idx: idx, key: configKey, log: log}
}

// Scoped is the cache for one configuration. It is safe for concurrent use.
type Scoped struct {
	idx *Index
	key string
	log logging.Interface
}

// Lookup returns the cached combos for f if the file has not changed since
// it was scanned.
func (s *Scoped) Lookup(f discover.ReplayFile) ([]combo.Combo, bool) {
	var size, modTime int64
	err := s.idx.db.QueryRow(
		"SELECT size, mod_time FROM scanned_files WHERE path = ? AND config_key = ?",
		f.Path, s.key,
	).Scan(&size, &modTime)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.log.Warnf("cache lookup %s: %v", f.Path, err)
		return nil, false
	}
	if size != f.Size || modTime != f.ModTime {
		return nil, false
	}

	rows, err := s.idx.db.Query(
		"SELECT start_frame, end_frame FROM combos WHERE path = ? AND config_key = ? ORDER BY seq",
		f.Path, s.key,
	)
	if err != nil {
		s.log.Warnf("cache lookup %s: %v", f.Path, err)
		return nil, false
	}
	defer rows.Close()

	var out []combo.Combo
	for rows.Next() {
		c := combo.Combo{Path: f.Path}
		if err := rows.Scan(&c.Start, &c.End); err != nil {
			s.log.Warnf("cache lookup %s: %v", f.Path, err)
			return nil, false
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		s.log.Warnf("cache lookup %s: %v", f.Path, err)
		return nil, false
	}
	return out, true
}

// Store records the combos found in f, replacing any earlier entry.
func (s *Scoped) Store(f discover.ReplayFile, combos []combo.Combo) {
	if err := s.store(f, combos); err != nil {
		s.log.Warnf("cache store %s: %v", f.Path, err)
	}
}

func (s *Scoped) store(f discover.ReplayFile, combos []combo.Combo) error {
	tx, err := s.idx.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO scanned_files (path, config_key, size, mod_time, scanned_at) VALUES (?, ?, ?, ?, ?)",
		f.Path, s.key, f.Size, f.ModTime, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM combos WHERE path = ? AND config_key = ?", f.Path, s.key); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO combos (path, config_key, seq, start_frame, end_frame) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, c := range combos {
		if _, err := stmt.Exec(f.Path, s.key, i, c.Start, c.End); err != nil {
			return err
		}
	}
	return tx.Commit()
}
