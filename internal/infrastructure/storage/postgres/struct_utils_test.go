package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cajaflow/internal/core/entity"
	"cajaflow/internal/core/id"
)

type mockCatalog struct {
	entity.BaseCatalog
	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone"`
}

type mockDocument struct {
	entity.BaseDocument
	Number string `db:"number" json:"number"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	for _, expected := range []string{"id", "version", "name", "phone"} {
		assert.Contains(t, cols, expected)
	}

	docCols := ExtractDBColumns[mockDocument]()
	for _, expected := range []string{"id", "version", "created_at", "updated_at", "number"} {
		assert.Contains(t, docCols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:      id.New(),
				Version: 5,
			},
		},
		Name:  "Club House",
		Phone: "555-0101",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "Club House", m["name"])
	assert.Equal(t, "555-0101", m["phone"])
}

func TestStructToMap_EmbeddedDocument(t *testing.T) {
	now := time.Now().UTC()
	doc := mockDocument{
		BaseDocument: entity.BaseDocument{
			BaseEntity: entity.BaseEntity{ID: id.New(), Version: 1},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		Number: "CAJA-2026-00001",
	}

	m := StructToMap(doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "CAJA-2026-00001", m["number"])
}
