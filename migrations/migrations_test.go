package migrations

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunLogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	db := openMemory(t)

	require.NoError(t, Run(db, slog.New(slog.NewJSONHandler(&buf, nil))))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, l := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &rec), l)
		assert.Equal(t, "goose", rec["component"])
	}
	assert.Contains(t, buf.String(), "00001_init.sql")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n))
	assert.Zero(t, n)
}

func TestRunSilentWithoutLogger(t *testing.T) {
	require.NoError(t, Run(openMemory(t), nil))
}
