package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReference(t *testing.T) {
	ref := NewReference(0)
	assert.Len(t, ref, ReferenceSize)
	for _, r := range ref {
		assert.True(t, strings.ContainsRune(referenceAlphabet, r), "unexpected character %q", r)
	}

	assert.Len(t, NewReference(6), 6)
}

func TestNewToken(t *testing.T) {
	a, b := NewToken(), NewToken()
	assert.Len(t, a, tokenSize)
	assert.NotEqual(t, a, b)
}

type row struct {
	ID       string `db:"id"`
	Name     string `db:"name,omitempty"`
	Internal string `db:"-"`
	Label    string
	hidden   string `db:"hidden"`
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, Columns(row{}))
	assert.Equal(t, []string{"id", "name"}, Columns(&row{}))
}

func TestColumnValues(t *testing.T) {
	got := ColumnValues(&row{ID: "fencing", Name: "Fencing", Internal: "x", Label: "y", hidden: "z"})
	assert.Equal(t, map[string]any{"id": "fencing", "name": "Fencing"}, got)
}

func TestColumnsRejectsNonStruct(t *testing.T) {
	assert.Panics(t, func() { Columns("fencing") })
}
