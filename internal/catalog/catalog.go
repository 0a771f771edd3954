// Package catalog records built cartridge images in a sqlite database.
package catalog

import (
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"hash/crc32"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mp3/ccsnes/internal/checksum"
)

// Entry is a single recorded build.
type Entry struct {
	ID       int64
	Title    string
	Path     string
	Size     int
	Checksum checksum.Pair
	CRC32    string
	SHA1     string
}

// Catalog is a sqlite backed list of built images.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database in file.
func Open(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", file, err)
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS build (id INTEGER PRIMARY KEY NOT NULL, title TEXT NOT NULL, path TEXT NOT NULL, size INTEGER NOT NULL, checksum INTEGER NOT NULL, complement INTEGER NOT NULL, crc32 TEXT NOT NULL, sha1 TEXT NOT NULL, UNIQUE(path, sha1))"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating catalog table: %w", err)
	}

	return &Catalog{
		db: db,
	}, nil
}

// NewEntry describes an image and computes its hashes.
func NewEntry(title, path string, data []byte, pair checksum.Pair) Entry {
	return Entry{
		Title:    title,
		Path:     path,
		Size:     len(data),
		Checksum: pair,
		CRC32:    fmt.Sprintf("%.*X", crc32.Size<<1, crc32.ChecksumIEEE(data)),
		SHA1:     fmt.Sprintf("%X", sha1.Sum(data)),
	}
}

// Record stores the entry and returns its id. Recording the same image at
// the same path again returns the existing id.
func (c *Catalog) Record(e Entry) (int64, error) {
	var id int64
	err := c.db.QueryRow("SELECT id FROM build WHERE path = ? AND sha1 = ?", e.Path, e.SHA1).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, err := c.db.Exec("INSERT INTO build (title, path, size, checksum, complement, crc32, sha1) VALUES (?, ?, ?, ?, ?, ?, ?)",
			e.Title, e.Path, e.Size, e.Checksum.Checksum, e.Checksum.Complement, e.CRC32, e.SHA1)
		if err != nil {
			return 0, fmt.Errorf("inserting build: %w", err)
		}
		return result.LastInsertId()
	case err == nil:
		return id, nil
	default:
		return 0, fmt.Errorf("querying build: %w", err)
	}
}

// FindByCRC returns all builds with the given CRC32.
func (c *Catalog) FindByCRC(crc string) ([]Entry, error) {
	return c.query("SELECT id, title, path, size, checksum, complement, crc32, sha1 FROM build WHERE crc32 = ? ORDER BY id", crc)
}

// List returns all recorded builds in insertion order.
func (c *Catalog) List() ([]Entry, error) {
	return c.query("SELECT id, title, path, size, checksum, complement, crc32, sha1 FROM build ORDER BY id")
}

func (c *Catalog) query(query string, args ...any) ([]Entry, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Path, &e.Size,
			&e.Checksum.Checksum, &e.Checksum.Complement, &e.CRC32, &e.SHA1); err != nil {
			return nil, fmt.Errorf("scanning build: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating builds: %w", err)
	}
	return entries, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
