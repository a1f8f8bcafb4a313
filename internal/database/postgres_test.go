package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := loadMigrations(migrationFiles)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].version)
	assert.Equal(t, "001_profiles.sql", migrations[0].name)
	assert.Contains(t, migrations[0].sql, "CREATE TABLE IF NOT EXISTS profiles")
}

func TestLoadMigrations_OrderAndFilter(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_checkins.sql": {Data: []byte("SELECT 2")},
		"migrations/001_profiles.sql": {Data: []byte("SELECT 1")},
		"migrations/README.md":        {Data: []byte("notes")},
	}

	migrations, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].version)
	assert.Equal(t, 2, migrations[1].version)
}

func TestLoadMigrations_RejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"no prefix", fstest.MapFS{"migrations/profiles.sql": {Data: []byte("x")}}},
		{"zero version", fstest.MapFS{"migrations/000_init.sql": {Data: []byte("x")}}},
		{"duplicate version", fstest.MapFS{
			"migrations/001_a.sql": {Data: []byte("x")},
			"migrations/01_b.sql":  {Data: []byte("y")},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadMigrations(tc.fsys)
			assert.Error(t, err)
		})
	}
}
