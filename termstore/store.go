// Package termstore is a SQL backed term store, taxonomy registry and
// translation provider built on bun.
package termstore

import (
	"context"
	"log/slog"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-quickattributes/terms"
)

// Store serves terms and attribute taxonomies from SQL tables.
type Store struct {
	db           *bun.DB
	terms        repository.Repository[*TermModel]
	taxonomies   repository.Repository[*TaxonomyModel]
	translations repository.Repository[*TranslationModel]
	logger       *slog.Logger
}

var (
	_ terms.Store    = (*Store)(nil)
	_ terms.Registry = (*Store)(nil)
)

// New builds a Store over db.
func New(db *bun.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:           db,
		terms:        repository.NewRepository[*TermModel](db, termHandlers()),
		taxonomies:   repository.NewRepository[*TaxonomyModel](db, taxonomyHandlers()),
		translations: repository.NewRepository[*TranslationModel](db, translationHandlers()),
		logger:       logger,
	}
}

// DB returns the underlying connection.
func (s *Store) DB() *bun.DB {
	return s.db
}

// QueryTerms implements terms.Store. Ties are broken by id. Terms without a
// priority sort after prioritized ones.
func (s *Store) QueryTerms(ctx context.Context, q terms.Query) ([]terms.Record, error) {
	criteria := []repository.SelectCriteria{
		whereTaxonomy(q.Taxonomy),
	}
	if q.HideEmpty {
		criteria = append(criteria, nonEmpty())
	}
	criteria = append(criteria, orderBy(q.OrderBy, q.Direction))

	rows, _, err := s.terms.List(ctx, criteria...)
	if err != nil {
		return nil, terms.StoreError(err, q.Taxonomy)
	}

	records := make([]terms.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records, nil
}

// TaxonomyExists implements terms.Registry. Lookup failures count as absent.
func (s *Store) TaxonomyExists(ctx context.Context, taxonomy string) bool {
	if taxonomy == "" {
		return false
	}
	count, err := s.taxonomies.Count(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident("name"), taxonomy)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "taxonomy lookup failed", slog.String("taxonomy", taxonomy), slog.Any("error", err))
		return false
	}
	return count > 0
}

// AttributeTaxonomies implements terms.Registry, ordered by name.
func (s *Store) AttributeTaxonomies(ctx context.Context) ([]terms.Taxonomy, error) {
	rows, _, err := s.taxonomies.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("name ASC")
	})
	if err != nil {
		return nil, terms.StoreError(err, "")
	}

	out := make([]terms.Taxonomy, 0, len(rows))
	for _, row := range rows {
		out = append(out, terms.Taxonomy{Name: row.Name, Label: row.Label})
	}
	return out, nil
}

// AttributeTaxonomyNames lists registered taxonomy names for settings
// validation.
func (s *Store) AttributeTaxonomyNames(ctx context.Context) ([]string, error) {
	taxonomies, err := s.AttributeTaxonomies(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(taxonomies))
	for _, tax := range taxonomies {
		names = append(names, tax.Name)
	}
	return names, nil
}

// AddTaxonomy registers an attribute taxonomy.
func (s *Store) AddTaxonomy(ctx context.Context, name, label string) error {
	_, err := s.taxonomies.Create(ctx, &TaxonomyModel{Name: name, Label: label})
	return err
}

// AddTerm inserts a term and returns it with its assigned id.
func (s *Store) AddTerm(ctx context.Context, term TermModel) (terms.Record, error) {
	row, err := s.terms.Create(ctx, &term)
	if err != nil {
		return terms.Record{}, err
	}
	return row.Record(), nil
}

// LinkTranslation records translatedID as the language counterpart of termID.
func (s *Store) LinkTranslation(ctx context.Context, termID int64, language string, translatedID int64) error {
	_, err := s.translations.Create(ctx, &TranslationModel{
		TermID:       termID,
		Language:     language,
		TranslatedID: translatedID,
	})
	return err
}

func whereTaxonomy(taxonomy string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident("taxonomy"), taxonomy)
	}
}

func nonEmpty() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? > 0", bun.Ident("count"))
	}
}

func orderBy(field terms.OrderField, dir terms.Direction) repository.SelectCriteria {
	direction := "ASC"
	if dir == terms.Descending {
		direction = "DESC"
	}

	return func(q *bun.SelectQuery) *bun.SelectQuery {
		switch field {
		case terms.OrderByCount:
			q = q.Order("count "+direction, "name ASC")
		case terms.OrderByPriority:
			q = q.OrderExpr("CASE WHEN ? IS NULL THEN 1 ELSE 0 END", bun.Ident("priority")).
				Order("priority "+direction, "name ASC")
		default:
			q = q.Order("name " + direction)
		}
		return q.Order("id ASC")
	}
}
