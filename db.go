package wbox

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bodgit/wbox/palette"
	_ "github.com/mattn/go-sqlite3"
)

// PaletteDB is a library of named palettes.
type PaletteDB struct {
	db *sql.DB
}

// PaletteInfo summarises a stored palette.
type PaletteInfo struct {
	Name    string
	SHA1    string
	Entries int
}

// NewPaletteDB opens or creates the palette database in file.
func NewPaletteDB(file string) (*PaletteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS palette (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS entry (palette_id INTEGER NOT NULL, idx INTEGER NOT NULL, terrain TEXT NOT NULL, color INTEGER NOT NULL, tags TEXT NOT NULL, PRIMARY KEY(palette_id, idx), FOREIGN KEY(palette_id) REFERENCES palette(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &PaletteDB{
		db: db,
	}, nil
}

func (db *PaletteDB) Close() error {
	return db.db.Close()
}

// ImportPalette parses the palette in file and stores it as name, replacing
// any palette already stored under that name.
func (db *PaletteDB) ImportPalette(name, file string) error {
	if name == "" {
		return fmt.Errorf("wbox: empty palette name")
	}

	f, err := os.Open(file)
	if err != nil {
		return &palette.LoadError{File: file, Kind: palette.IO, Err: err}
	}
	defer f.Close()

	h := sha1.New()
	p, err := palette.Load(io.TeeReader(f, h), file, palette.Strict)
	if err != nil {
		return err
	}
	sha := fmt.Sprintf("%X", h.Sum(nil))

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM palette WHERE name = ?", name); err != nil {
		return err
	}

	result, err := tx.Exec("INSERT INTO palette (name, sha1) VALUES (?, ?)", name, sha)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for _, e := range p.Entries() {
		color := int64(e.Color.R)<<16 | int64(e.Color.G)<<8 | int64(e.Color.B)
		if _, err = tx.Exec("INSERT INTO entry (palette_id, idx, terrain, color, tags) VALUES (?, ?, ?, ?, ?)", id, e.Index, e.Terrain, color, strings.Join(e.Tags, " ")); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadPalette returns the palette stored as name.
func (db *PaletteDB) LoadPalette(name string, policy palette.Policy) (*palette.Table, error) {
	rows, err := db.db.Query("SELECT e.terrain, e.color, e.tags FROM entry AS e JOIN palette AS p ON e.palette_id = p.id WHERE p.name = ? ORDER BY e.idx", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []palette.Entry
	for rows.Next() {
		var terrain, tags string
		var color int64
		if err := rows.Scan(&terrain, &color, &tags); err != nil {
			return nil, err
		}
		entries = append(entries, palette.Entry{
			Color:   palette.RGB{R: uint8(color >> 16), G: uint8(color >> 8), B: uint8(color)},
			Terrain: terrain,
			Tags:    strings.Fields(tags),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("wbox: no palette named %q", name)
	}

	return palette.New(entries, policy)
}

// ListPalettes returns every stored palette ordered by name.
func (db *PaletteDB) ListPalettes() ([]PaletteInfo, error) {
	rows, err := db.db.Query("SELECT p.name, p.sha1, COUNT(e.idx) FROM palette AS p LEFT JOIN entry AS e ON e.palette_id = p.id GROUP BY p.id ORDER BY p.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []PaletteInfo
	for rows.Next() {
		var info PaletteInfo
		if err := rows.Scan(&info.Name, &info.SHA1, &info.Entries); err != nil {
			return nil, err
		}
		list = append(list, info)
	}

	return list, rows.Err()
}
