package label

import (
	"context"
	"sync"

	"github.com/goliatone/go-quickattributes/terms"
)

// CatalogTranslator serves translations from a static language -> term id ->
// name table. It is active once it holds at least one entry.
type CatalogTranslator struct {
	mu      sync.RWMutex
	entries map[string]map[int64]string
}

// NewCatalogTranslator copies entries into a new translator.
func NewCatalogTranslator(entries map[string]map[int64]string) *CatalogTranslator {
	c := &CatalogTranslator{entries: map[string]map[int64]string{}}
	for lang, names := range entries {
		for id, name := range names {
			c.Add(lang, id, name)
		}
	}
	return c
}

// Add registers the name of termID in language.
func (c *CatalogTranslator) Add(language string, termID int64, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[language] == nil {
		c.entries[language] = map[int64]string{}
	}
	c.entries[language][termID] = name
}

// TranslatedName implements TranslationProvider. Empty names count as missing.
func (c *CatalogTranslator) TranslatedName(_ context.Context, term terms.Record, language string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.entries[language][term.ID]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// IsActive implements TranslationProvider. The catalog is active once it
// holds at least one language.
func (c *CatalogTranslator) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries) > 0
}
