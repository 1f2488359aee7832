/*
Package catalog records the outcome of every conversion in a SQLite
database so that repeated runs can tell which source bitmaps have already been
converted successfully.

Sources are identified by the SHA-1 of their contents, outputs by the source,
the name of the stage that produced them and the path they were written to.
The same source converted into two places has two sets of outputs.
*/
package catalog

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/bodgit/bmpreduce/bmp"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// Catalog is a handle to the database.
type Catalog struct {
	db *sql.DB
}

// Output describes a single file produced by a stage.
type Output struct {
	Stage string
	Path  string
	SHA1  string
	Size  int64
	Error string // Empty on success
}

// New opens, creating if necessary, the database in file.
func New(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS source (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, width INTEGER, height INTEGER)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS output (source_id INTEGER NOT NULL, stage TEXT NOT NULL, path TEXT NOT NULL, sha1 TEXT, size INTEGER, error TEXT, PRIMARY KEY (source_id, stage, path), FOREIGN KEY(source_id) REFERENCES source(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// AddSource returns the id of the source with the given SHA-1, adding it if
// it is not yet known. Non-zero dimensions are stored against the source.
func (c *Catalog) AddSource(sha string, d bmp.Dimensions) (int64, error) {
	var width, height sql.NullInt64
	if d.Width > 0 && d.Height > 0 {
		width = sql.NullInt64{Int64: int64(d.Width), Valid: true}
		height = sql.NullInt64{Int64: int64(d.Height), Valid: true}
	}

	// Concurrent callers may race to add the same source
	if _, err := c.db.Exec("INSERT INTO source (sha1, width, height) VALUES (?, ?, ?) ON CONFLICT (sha1) DO NOTHING", sha, width, height); err != nil {
		return 0, err
	}

	var id int64
	if err := c.db.QueryRow("SELECT id FROM source WHERE sha1 = ?", sha).Scan(&id); err != nil {
		return 0, err
	}

	if width.Valid {
		if _, err := c.db.Exec("UPDATE source SET width = ?, height = ? WHERE id = ?", width, height, id); err != nil {
			return 0, err
		}
	}

	return id, nil
}

// Dimensions returns the dimensions recorded for the source with the given
// SHA-1. ok is false if the source or its dimensions are unknown.
func (c *Catalog) Dimensions(sha string) (d bmp.Dimensions, ok bool, err error) {
	var width, height sql.NullInt64
	switch err := c.db.QueryRow("SELECT width, height FROM source WHERE sha1 = ?", sha).Scan(&width, &height); err {
	case sql.ErrNoRows:
		return bmp.Dimensions{}, false, nil
	case nil:
		if !width.Valid || !height.Valid {
			return bmp.Dimensions{}, false, nil
		}
		return bmp.Dimensions{Width: int(width.Int64), Height: int(height.Int64)}, true, nil
	default:
		return bmp.Dimensions{}, false, err
	}
}

// AddOutput records the result of a stage against a source, replacing any
// earlier result for the same stage and path.
func (c *Catalog) AddOutput(source int64, o Output) error {
	var sha, msg sql.NullString
	if o.SHA1 != "" {
		sha = sql.NullString{String: o.SHA1, Valid: true}
	}
	if o.Error != "" {
		msg = sql.NullString{String: o.Error, Valid: true}
	}

	if _, err := c.db.Exec("INSERT OR REPLACE INTO output (source_id, stage, path, sha1, size, error) VALUES (?, ?, ?, ?, ?, ?)", source, o.Stage, o.Path, sha, o.Size, msg); err != nil {
		return err
	}
	return nil
}

// Outputs returns every recorded output for the source with the given SHA-1,
// ordered by stage name and path.
func (c *Catalog) Outputs(sha string) ([]Output, error) {
	rows, err := c.db.Query("SELECT o.stage, o.path, o.sha1, o.size, o.error FROM output AS o JOIN source AS s ON o.source_id = s.id WHERE s.sha1 = ? ORDER BY o.stage, o.path", sha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outputs []Output
	for rows.Next() {
		var o Output
		var sha, msg sql.NullString
		var size sql.NullInt64
		if err := rows.Scan(&o.Stage, &o.Path, &sha, &size, &msg); err != nil {
			return nil, err
		}
		o.SHA1, o.Size, o.Error = sha.String, size.Int64, msg.String
		outputs = append(outputs, o)
	}

	return outputs, rows.Err()
}

// Complete reports whether every one of the wanted outputs, matched by stage
// and path, was recorded as successful for the source with the given SHA-1
// and is still on disk with the recorded size.
func (c *Catalog) Complete(sha string, want []Output) (bool, error) {
	outputs, err := c.Outputs(sha)
	if err != nil {
		return false, err
	}

	type key struct {
		stage, path string
	}

	done := make(map[key]Output, len(outputs))
	for _, o := range outputs {
		done[key{o.Stage, o.Path}] = o
	}

	for _, w := range want {
		o, ok := done[key{w.Stage, w.Path}]
		if !ok || o.Error != "" {
			return false, nil
		}

		info, err := os.Stat(o.Path)
		switch {
		case os.IsNotExist(err):
			return false, nil
		case err != nil:
			return false, err
		case !info.Mode().IsRegular() || info.Size() != o.Size:
			return false, nil
		}
	}

	return true, nil
}
