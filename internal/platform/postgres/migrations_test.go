package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(Migrations, MigrationsDir)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	for _, e := range entries {
		content, err := fs.ReadFile(Migrations, MigrationsDir+"/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- +goose Up", e.Name())
		assert.Contains(t, string(content), "-- +goose Down", e.Name())
	}

	challenges, err := fs.ReadFile(Migrations, MigrationsDir+"/00005_create_challenges.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(challenges), "num_nonnulls(receipt_id, invoice_id) = 1"))
}
