package termcache

import (
	"context"
	"log/slog"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-quickattributes/terms"
)

// EventKind is the kind of term mutation.
type EventKind string

const (
	TermCreated EventKind = "created"
	TermEdited  EventKind = "edited"
	TermDeleted EventKind = "deleted"
)

// ParseEventKind validates a mutation kind name.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case TermCreated, TermEdited, TermDeleted:
		return k, nil
	}
	return "", goerrors.New("unknown term event kind: "+s, goerrors.CategoryBadInput).
		WithTextCode("UNKNOWN_TERM_EVENT")
}

// TermEvent reports a create, edit or delete of one term.
type TermEvent struct {
	Kind     EventKind
	TermID   int64
	Taxonomy string
}

// HandleTermEvent invalidates the cache when an attribute term changes.
// Events for other taxonomies are ignored. It reports whether the cache was
// invalidated.
func (c *Cache) HandleTermEvent(ctx context.Context, ev TermEvent) (bool, error) {
	if !terms.IsAttributeTaxonomy(ev.Taxonomy) {
		return false, nil
	}
	c.logger.DebugContext(ctx, "term mutation",
		slog.String("kind", string(ev.Kind)),
		slog.Int64("term_id", ev.TermID),
		slog.String("taxonomy", ev.Taxonomy))
	return true, c.InvalidateAll(ctx)
}
