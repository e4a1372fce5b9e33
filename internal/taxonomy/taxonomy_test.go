package taxonomy_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mederror/internal/taxonomy"
)

func TestDefault(t *testing.T) {
	tax := taxonomy.Default()
	labels := tax.Labels()

	assert.Len(t, labels, 38)
	assert.Equal(t, "Guideline_Error", labels[0])
	assert.True(t, tax.Contains("negation"))
	assert.True(t, tax.Contains("  Typographical_Error "))
	assert.False(t, tax.Contains("CHATGPT_FAILURE"))

	category, ok := tax.CategoryOf("family_member")
	require.True(t, ok)
	assert.Equal(t, "Subject", category)
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "name: small\ncategories:\n  - name: Context\n    classes: [Negation, Certainty]\n"
	require.NoError(t, afero.WriteFile(fs, "/tax.yaml", []byte(content), 0o644))

	tax, err := taxonomy.Load(fs, "/tax.yaml")
	require.NoError(t, err)
	assert.Equal(t, "small", tax.Name)
	assert.Equal(t, []string{"Negation", "Certainty"}, tax.Labels())
}

func TestLoad_Missing(t *testing.T) {
	_, err := taxonomy.Load(afero.NewMemMapFs(), "/absent.yaml")
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "categories: [unterminated"},
		{"no classes", "name: empty\ncategories: []\n"},
		{"duplicate ignoring case", "categories:\n  - name: A\n    classes: [Negation]\n  - name: B\n    classes: [negation]\n"},
		{"blank class", "categories:\n  - name: A\n    classes: ['  ']\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := taxonomy.Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
