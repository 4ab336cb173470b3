package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsTerm(t *testing.T) {
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"I am a gay man", "gay", true},
		{"GAY pride", "gay", true},
		{"Gaylord is a name", "gay", false},
		{"the muslim community", "Muslim", true},
		{"muslims", "muslim", false},
		{"end with term gay", "gay", true},
		{"gay.", "gay", true},
		{"a_gay_b", "gay", false},
		{"older person", "older", true},
		{"older", "", false},
		{"STRASSE und straße", "straße", true},
		{"the lgbt+ folks", "lgbt+", true},
		{"two gay-friendly places", "gay", true},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsTerm(tt.text, tt.term))
		})
	}
}

func TestTagSubgroups(t *testing.T) {
	d := New([]bool{false, true, false})
	require.NoError(t, d.SetText([]string{"I am gay", "Muslim and Gay", "nothing here"}))

	require.NoError(t, TagSubgroups(d, []string{"gay", "muslim"}))

	gay, ok := d.Subgroup("gay")
	require.True(t, ok)
	assert.Equal(t, []bool{true, true, false}, gay)
	muslim, ok := d.Subgroup("muslim")
	require.True(t, ok)
	assert.Equal(t, []bool{false, true, false}, muslim)

	err := TagSubgroups(d, []string{"gay"})
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestTagSubgroups_NoText(t *testing.T) {
	d := New([]bool{true})
	assert.Error(t, TagSubgroups(d, []string{"gay"}))
}

func TestReadTerms(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "terms.txt")
	require.NoError(t, os.WriteFile(p, []byte("gay\n  muslim \n\nolder\n"), 0o644))

	terms, err := ReadTerms(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"gay", "muslim", "older"}, terms)

	_, err = ReadTerms(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
