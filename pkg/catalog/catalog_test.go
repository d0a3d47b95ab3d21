package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f880guardian/audit-engine/pkg/models"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	assert.Equal(t, 7, cat.Size())
	assert.Equal(t, []string{
		"Hand Hygiene",
		"PPE Usage",
		"Environmental Cleaning",
		"Isolation Precautions",
		"Resident Care Equipment",
	}, cat.Categories())

	q, ok := cat.Question("hh-1")
	require.True(t, ok)
	assert.Equal(t, "Hand Hygiene", q.Category)

	assert.True(t, cat.Contains("iso-1"))
	assert.False(t, cat.Contains("nope"))
	assert.Len(t, cat.ByCategory("Hand Hygiene"), 2)
	assert.Empty(t, cat.ByCategory("Unknown Category"))

	// Declared but question-less in the built-in set
	assert.True(t, cat.HasCategory("Resident Care Equipment"))
	assert.Empty(t, cat.ByCategory("Resident Care Equipment"))
	assert.False(t, cat.HasCategory("Unknown Category"))
}

func TestNewValidation(t *testing.T) {
	t.Run("rejects empty catalog", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := New([]models.Question{
			{ID: "q1", Category: "A", Text: "first"},
			{ID: "q1", Category: "A", Text: "second"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate question id")
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := New([]models.Question{
			{ID: "q1", Category: "", Text: "text"},
		})
		assert.Error(t, err)
	})
}

func TestNewWithCategories(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Category: "A", Text: "first"},
	}

	t.Run("declared list may include empty categories", func(t *testing.T) {
		cat, err := NewWithCategories(questions, []string{"A", "B"})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, cat.Categories())
		assert.True(t, cat.HasCategory("B"))
		assert.Empty(t, cat.ByCategory("B"))
	})

	t.Run("rejects undeclared question category", func(t *testing.T) {
		_, err := NewWithCategories(questions, []string{"B"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "undeclared category")
	})

	t.Run("rejects duplicate categories", func(t *testing.T) {
		_, err := NewWithCategories(questions, []string{"A", "A"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate category")
	})
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `questions:
  - id: kq-1
    category: Kitchen
    text: Food surfaces are sanitized between uses.
  - id: kq-2
    category: Kitchen
    text: Refrigerator temperatures are logged daily.
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Size())
	assert.Equal(t, []string{"Kitchen"}, cat.Categories())

	q, ok := cat.Question("kq-2")
	require.True(t, ok)
	assert.Equal(t, "Refrigerator temperatures are logged daily.", q.Text)
}

func TestLoadYAMLDeclaredCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `categories:
  - Kitchen
  - Laundry
questions:
  - id: kq-1
    category: Kitchen
    text: Food surfaces are sanitized between uses.
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kitchen", "Laundry"}, cat.Categories())
	assert.True(t, cat.HasCategory("Laundry"))
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("questions: [what"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestQuestionsReturnsCopy(t *testing.T) {
	cat := Default()
	qs := cat.Questions()
	qs[0].Text = "mutated"

	q, _ := cat.Question(qs[0].ID)
	assert.NotEqual(t, "mutated", q.Text)
}
