package sqliteutil

import (
	"database/sql"
	"fmt"
	devenv "matchcast-backend/dev/env"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenDB opens (creating if needed) a local sqlite database and applies `schema`.
// `path` may use the `<dev_state>` prefix.
func OpenDB(schema, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	dbpath, err := devenv.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer, concurrent writers on separate
	// connections fail with SQLITE_BUSY instead of queueing
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}

	err = applySchema(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenLibsql connects to a remote libsql (turso) database and applies `schema`.
func OpenLibsql(schema, dbUrl, authToken string) (*sql.DB, error) {
	if dbUrl == "" {
		return nil, fmt.Errorf("a libsql url was not specified")
	}
	if authToken != "" {
		parsed, err := url.Parse(dbUrl)
		if err != nil {
			return nil, err
		}
		query := parsed.Query()
		query.Set("authToken", authToken)
		parsed.RawQuery = query.Encode()
		dbUrl = parsed.String()
	}

	db, err := sql.Open("libsql", dbUrl)
	if err != nil {
		return nil, err
	}
	err = applySchema(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func applySchema(db *sql.DB, schema string) error {
	if strings.TrimSpace(schema) == "" {
		return nil
	}
	_, err := db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type Config struct {
	// either "sqlite" (default) or "libsql"
	Driver    string `json:"driver"`
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c Config) OpenDB(schema string) (*sql.DB, error) {
	switch c.Driver {
	case "", "sqlite":
		return OpenDB(schema, c.File)
	case "libsql":
		return OpenLibsql(schema, c.Url, c.AuthToken)
	default:
		return nil, fmt.Errorf("unknown sql driver %q", c.Driver)
	}
}
