// Package terms defines the read-only term records the pipeline works with and
// the ports it uses to reach the term store and taxonomy registry.
package terms

import (
	"context"
	"strings"
)

// AttributePrefix marks product attribute taxonomies, e.g. "attr_color".
const AttributePrefix = "attr_"

// Record is a read-only projection of a taxonomy term.
type Record struct {
	ID       int64  `json:"id" msgpack:"id"`
	Name     string `json:"name" msgpack:"name"`
	Slug     string `json:"slug" msgpack:"slug"`
	Taxonomy string `json:"taxonomy" msgpack:"taxonomy"`
	Count    int    `json:"count" msgpack:"count"`
	// Priority is the admin defined position of the term, when the store keeps one.
	Priority *int `json:"priority,omitempty" msgpack:"priority,omitempty"`
}

// Taxonomy describes a registered attribute taxonomy.
type Taxonomy struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// OrderField is the store-native ordering column.
type OrderField string

const (
	OrderByName     OrderField = "name"
	OrderByPriority OrderField = "priority"
	OrderByCount    OrderField = "count"
)

// Direction is the sort direction applied to an OrderField.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Query selects the terms of one taxonomy.
type Query struct {
	Taxonomy  string
	OrderBy   OrderField
	Direction Direction
	HideEmpty bool
}

// Store returns the terms matching a query in the requested order.
// Backend failures are reported as StoreError.
type Store interface {
	QueryTerms(ctx context.Context, q Query) ([]Record, error)
}

// Registry knows which taxonomies exist.
type Registry interface {
	TaxonomyExists(ctx context.Context, taxonomy string) bool
	AttributeTaxonomies(ctx context.Context) ([]Taxonomy, error)
}

// IsAttributeTaxonomy reports whether name carries the attribute prefix.
func IsAttributeTaxonomy(name string) bool {
	return strings.HasPrefix(name, AttributePrefix) && len(name) > len(AttributePrefix)
}

// AttributeName strips the attribute prefix: "attr_color" -> "color".
// Names without the prefix are returned unchanged.
func AttributeName(taxonomy string) string {
	return strings.TrimPrefix(taxonomy, AttributePrefix)
}
