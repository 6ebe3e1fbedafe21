package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMembers(t *testing.T) {
	members, err := loadMembers(writeFile(t, `[{"name":" John Doe ","score":10,"rank":5},{"name":"Jane Smith","score":15,"rank":3}]`))
	require.NoError(t, err)
	assert.Equal(t, []models.Member{
		{Name: "John Doe", Score: 10, Rank: 5},
		{Name: "Jane Smith", Score: 15, Rank: 3},
	}, members)
}

func TestLoadMembers_Invalid(t *testing.T) {
	_, err := loadMembers(writeFile(t, `[{"name":"","score":1}]`))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = loadMembers(writeFile(t, `[{"name":"   ","score":1}]`))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = loadMembers(writeFile(t, `[{"name":"A","score":-1}]`))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = loadMembers(writeFile(t, `[{"name":"A","rank":-3}]`))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = loadMembers(writeFile(t, `not json`))
	assert.Error(t, err)

	_, err = loadMembers(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
