package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.sqlite")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO setting (client_id, name, value) VALUES ('c', 'k', 'v')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening must keep data and not re-run migrations
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var value string
	require.NoError(t, db.QueryRow(`SELECT value FROM setting WHERE client_id = 'c' AND name = 'k'`).Scan(&value))
	assert.Equal(t, "v", value)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM token`).Scan(&n))
	assert.Equal(t, 0, n)
}
