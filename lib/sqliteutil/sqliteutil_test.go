package sqliteutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `
create table if not exists kv (
	k text not null unique,
	v text not null
);
`

func TestOpenDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(testSchema, path)
	require.NoError(t, err)
	_, err = db.Exec("insert into kv(k, v) values ('a', '1')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening applies the schema again without clobbering data
	db, err = Config{File: path}.OpenDB(testSchema)
	require.NoError(t, err)
	defer db.Close()

	var v string
	err = db.QueryRow("select v from kv where k = 'a'").Scan(&v)
	require.NoError(t, err)
	require.Equal(t, "1", v)
}

func TestConfigErrors(t *testing.T) {
	_, err := Config{}.OpenDB(testSchema)
	require.Error(t, err)

	_, err = Config{Driver: "postgres", File: "x.db"}.OpenDB(testSchema)
	require.ErrorContains(t, err, "unknown sql driver")

	_, err = Config{Driver: "libsql"}.OpenDB(testSchema)
	require.ErrorContains(t, err, "libsql url")
}
