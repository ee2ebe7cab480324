package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{name: "no markers", content: "CREATE TABLE a (id INT);", expected: "CREATE TABLE a (id INT);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a (id INT);", expected: "\nCREATE TABLE a (id INT);"},
		{
			name:     "up and down",
			content:  "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;",
			expected: "\nCREATE TABLE a (id INT);\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractUpMigration(tt.content))
		})
	}
}

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte("SELECT 2;")},
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"embed.go":  {Data: []byte("package migrations")},
		"old/x.sql": {Data: []byte("SELECT 3;")},
	}

	files, err := migrationFiles(fsys)

	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}
