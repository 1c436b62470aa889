// Package label resolves the display label of a term.
package label

import (
	"context"
	"strings"

	"github.com/goliatone/go-quickattributes/settings"
	"github.com/goliatone/go-quickattributes/terms"
)

// TranslationProvider looks up the name of a term in another language.
type TranslationProvider interface {
	TranslatedName(ctx context.Context, term terms.Record, language string) (string, bool)
	IsActive() bool
}

// NoopTranslator is the provider used when no translation backend is
// configured. It is never active.
type NoopTranslator struct{}

// TranslatedName implements TranslationProvider.
func (NoopTranslator) TranslatedName(context.Context, terms.Record, string) (string, bool) {
	return "", false
}

// IsActive implements TranslationProvider.
func (NoopTranslator) IsActive() bool { return false }

// Resolve returns the label for term in language. Lookup order: the override
// for language, the global override, the translated name when translate is
// active, then the raw term name.
func Resolve(ctx context.Context, term terms.Record, snap settings.Snapshot, language string, translate TranslationProvider) string {
	if language != "" && language != settings.GlobalLanguage {
		if label, ok := snap.Override(language, term.ID); ok {
			return label
		}
	}

	if label, ok := snap.Override(settings.GlobalLanguage, term.ID); ok {
		return label
	}

	if translate != nil && translate.IsActive() {
		if name, ok := translate.TranslatedName(ctx, term, language); ok && name != "" {
			return name
		}
	}

	return term.Name
}

// LanguageFromLocale returns the language code of a locale such as "it_IT"
// or "pt-BR". A bare code is returned lowercased.
func LanguageFromLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, "_-"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}
