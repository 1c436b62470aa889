package termstore

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-quickattributes/terms"
)

// Translator resolves translated term names through term_translations.
type Translator struct {
	store *Store
}

// Translator returns a translation provider backed by s.
func (s *Store) Translator() *Translator {
	return &Translator{store: s}
}

// TranslatedName returns the name of the term linked to term in language.
// A term linked to itself has no translation.
func (t *Translator) TranslatedName(ctx context.Context, term terms.Record, language string) (string, bool) {
	links, _, err := t.store.translations.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("? = ?", bun.Ident("term_id"), term.ID).
			Where("? = ?", bun.Ident("language"), language).
			Limit(1)
	})
	if err != nil {
		t.store.logger.WarnContext(ctx, "translation lookup failed",
			slog.Int64("term_id", term.ID),
			slog.String("language", language),
			slog.Any("error", err))
		return "", false
	}
	if len(links) == 0 || links[0].TranslatedID == 0 || links[0].TranslatedID == term.ID {
		return "", false
	}

	rows, _, err := t.store.terms.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident("id"), links[0].TranslatedID).Limit(1)
	})
	if err != nil || len(rows) == 0 || rows[0].Name == "" {
		return "", false
	}
	return rows[0].Name, true
}

// IsActive reports whether the translator is bound to a store.
func (t *Translator) IsActive() bool {
	return t.store != nil
}
