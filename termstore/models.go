package termstore

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-quickattributes/terms"
)

// TermModel is a row of the terms table.
type TermModel struct {
	bun.BaseModel `bun:"table:terms,alias:t"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull"`
	Slug     string `bun:"slug,notnull"`
	Taxonomy string `bun:"taxonomy,notnull"`
	Count    int    `bun:"count,notnull,default:0"`
	Priority *int   `bun:"priority"`
}

// Record projects the row onto the domain type.
func (m *TermModel) Record() terms.Record {
	rec := terms.Record{
		ID:       m.ID,
		Name:     m.Name,
		Slug:     m.Slug,
		Taxonomy: m.Taxonomy,
		Count:    m.Count,
	}
	if m.Priority != nil {
		p := *m.Priority
		rec.Priority = &p
	}
	return rec
}

// TaxonomyModel is a registered attribute taxonomy.
type TaxonomyModel struct {
	bun.BaseModel `bun:"table:attribute_taxonomies,alias:at"`

	Name  string `bun:"name,pk"`
	Label string `bun:"label,notnull"`
}

// TranslationModel links a term to its counterpart in another language.
type TranslationModel struct {
	bun.BaseModel `bun:"table:term_translations,alias:tt"`

	TermID       int64  `bun:"term_id,pk"`
	Language     string `bun:"language,pk"`
	TranslatedID int64  `bun:"translated_id,notnull"`
}

// Rows are keyed by integers and names, not UUIDs, so the id handlers are
// inert.
func termHandlers() repository.ModelHandlers[*TermModel] {
	return repository.ModelHandlers[*TermModel]{
		NewRecord:     func() *TermModel { return &TermModel{} },
		GetID:         func(*TermModel) uuid.UUID { return uuid.Nil },
		SetID:         func(*TermModel, uuid.UUID) {},
		GetIdentifier: func() string { return "slug" },
	}
}

func taxonomyHandlers() repository.ModelHandlers[*TaxonomyModel] {
	return repository.ModelHandlers[*TaxonomyModel]{
		NewRecord:     func() *TaxonomyModel { return &TaxonomyModel{} },
		GetID:         func(*TaxonomyModel) uuid.UUID { return uuid.Nil },
		SetID:         func(*TaxonomyModel, uuid.UUID) {},
		GetIdentifier: func() string { return "name" },
	}
}

func translationHandlers() repository.ModelHandlers[*TranslationModel] {
	return repository.ModelHandlers[*TranslationModel]{
		NewRecord:     func() *TranslationModel { return &TranslationModel{} },
		GetID:         func(*TranslationModel) uuid.UUID { return uuid.Nil },
		SetID:         func(*TranslationModel, uuid.UUID) {},
		GetIdentifier: func() string { return "language" },
	}
}
