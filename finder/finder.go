// Package finder assembles the quick-finder columns for one render: the
// enabled columns with their headings and the labelled, linked terms of each.
package finder

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-quickattributes/filterurl"
	"github.com/goliatone/go-quickattributes/label"
	"github.com/goliatone/go-quickattributes/settings"
	"github.com/goliatone/go-quickattributes/terms"
)

// SettingsLoader supplies the configuration for a render.
type SettingsLoader interface {
	Load(ctx context.Context) (settings.Snapshot, error)
}

// TermSource returns the ordered terms of a taxonomy.
type TermSource interface {
	GetTerms(ctx context.Context, taxonomy string, snap settings.Snapshot, language string) []terms.Record
}

// Item is one term link.
type Item struct {
	TermID    int64  `json:"term_id"`
	Label     string `json:"label"`
	URL       string `json:"url"`
	Count     int    `json:"count"`
	ShowCount bool   `json:"show_count"`
}

// Column is an enabled slot with its terms. Items is empty, never nil, when
// the taxonomy has no terms to show.
type Column struct {
	Index    int    `json:"index"`
	Taxonomy string `json:"taxonomy"`
	Heading  string `json:"heading"`
	Items    []Item `json:"items"`
}

// View is the data needed to render the finder.
type View struct {
	Title      string   `json:"title,omitempty"`
	Language   string   `json:"language"`
	NumColumns int      `json:"num_columns"`
	Columns    []Column `json:"columns"`
}

// Finder builds views.
type Finder struct {
	settings        SettingsLoader
	registry        terms.Registry
	terms           TermSource
	translate       label.TranslationProvider
	urls            filterurl.BaseURLProvider
	defaultLanguage string
	logger          *slog.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithTranslator sets the translation provider. Defaults to NoopTranslator.
func WithTranslator(tr label.TranslationProvider) Option {
	return func(f *Finder) {
		if tr != nil {
			f.translate = tr
		}
	}
}

// WithDefaultLanguage sets the language used when a request names none.
func WithDefaultLanguage(language string) Option {
	return func(f *Finder) {
		f.defaultLanguage = language
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Finder.
func New(loader SettingsLoader, registry terms.Registry, source TermSource, urls filterurl.BaseURLProvider, opts ...Option) *Finder {
	f := &Finder{
		settings:  loader,
		registry:  registry,
		terms:     source,
		translate: label.NoopTranslator{},
		urls:      urls,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Columns builds the view for language. Settings failures fall back to the
// defaults the loader returns; the only error is a cancelled context.
func (f *Finder) Columns(ctx context.Context, language string) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	if language == "" {
		language = f.defaultLanguage
	}

	snap, err := f.settings.Load(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "settings load failed, rendering defaults", slog.Any("error", err))
	}

	view := View{
		Title:      snap.ContainerTitle,
		Language:   language,
		NumColumns: snap.NumColumns,
		Columns:    []Column{},
	}
	if view.NumColumns < 1 {
		view.NumColumns = 1
	}

	labels := f.lazyLabels(ctx)

	for _, col := range snap.ActiveColumns() {
		if err := ctx.Err(); err != nil {
			return View{}, err
		}

		heading := col.Heading
		if heading == "" {
			heading = labels(col.Taxonomy)
		}

		records := f.terms.GetTerms(ctx, col.Taxonomy, snap, language)
		items := make([]Item, 0, len(records))
		for _, rec := range records {
			items = append(items, Item{
				TermID:    rec.ID,
				Label:     label.Resolve(ctx, rec, snap, language, f.translate),
				URL:       filterurl.Build(col.Taxonomy, rec, snap, language, f.urls),
				Count:     rec.Count,
				ShowCount: snap.ShowCounts,
			})
		}

		view.Columns = append(view.Columns, Column{
			Index:    col.Index,
			Taxonomy: col.Taxonomy,
			Heading:  heading,
			Items:    items,
		})
	}

	return view, nil
}

// lazyLabels returns a heading lookup that lists the registry at most once.
func (f *Finder) lazyLabels(ctx context.Context) func(taxonomy string) string {
	var byName map[string]string
	return func(taxonomy string) string {
		if byName == nil {
			byName = map[string]string{}
			taxonomies, err := f.registry.AttributeTaxonomies(ctx)
			if err != nil {
				f.logger.WarnContext(ctx, "attribute taxonomies unavailable", slog.Any("error", err))
				taxonomies = nil
			}
			for _, tax := range taxonomies {
				byName[tax.Name] = tax.Label
			}
		}
		if l := byName[taxonomy]; l != "" {
			return l
		}
		return taxonomy
	}
}
