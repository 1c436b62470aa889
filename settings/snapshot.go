// Package settings resolves the persisted quick-finder configuration into a
// complete Snapshot and persists sanitized admin input.
package settings

// OrderBy selects how terms are ordered inside a column.
type OrderBy string

const (
	OrderByName     OrderBy = "name"
	OrderByPriority OrderBy = "priority"
	OrderByCount    OrderBy = "count"
)

// BaseURLType selects the page filter links point at.
type BaseURLType string

const (
	BaseURLShop     BaseURLType = "shop"
	BaseURLCategory BaseURLType = "category"
)

// GlobalLanguage is the override bucket used regardless of language.
const GlobalLanguage = "_global"

const (
	// MaxColumns is the number of configurable column slots.
	MaxColumns = 6
	// DefaultNumColumns is the desktop grid width used when none is valid.
	DefaultNumColumns = 3
)

// Persisted field names.
const (
	KeyColumns        = "columns"
	KeyOrderBy        = "order_by"
	KeyHideEmpty      = "hide_empty"
	KeyShowCounts     = "show_counts"
	KeyBaseURLType    = "base_url_type"
	KeyBaseCategory   = "base_category"
	KeyContainerTitle = "container_title"
	KeyTermOverrides  = "term_overrides"
	KeyNumColumns     = "num_columns"
)

// Column is one configurable slot. An empty Taxonomy disables the slot.
type Column struct {
	Taxonomy string `json:"taxonomy"`
	Heading  string `json:"heading"`
}

// Snapshot is the fully defaulted configuration in effect for a render.
type Snapshot struct {
	// Columns holds slots 1..6 at indexes 0..5.
	Columns        [MaxColumns]Column          `json:"columns"`
	OrderBy        OrderBy                     `json:"order_by"`
	HideEmpty      bool                        `json:"hide_empty"`
	ShowCounts     bool                        `json:"show_counts"`
	BaseURLType    BaseURLType                 `json:"base_url_type"`
	BaseCategoryID int                         `json:"base_category"`
	ContainerTitle string                      `json:"container_title"`
	TermOverrides  map[string]map[int64]string `json:"term_overrides"`
	NumColumns     int                         `json:"num_columns"`
}

// IndexedColumn is an enabled column with its 1-based slot number.
type IndexedColumn struct {
	Index int
	Column
}

// Partial is a loosely typed persisted record, as decoded from JSON.
type Partial map[string]any

// Defaults returns the configuration used before anything is saved.
func Defaults() Snapshot {
	return Snapshot{
		OrderBy:       OrderByName,
		HideEmpty:     true,
		ShowCounts:    false,
		BaseURLType:   BaseURLShop,
		TermOverrides: map[string]map[int64]string{},
		NumColumns:    DefaultNumColumns,
	}
}

// Column returns slot i (1-based). Out of range slots are empty.
func (s Snapshot) Column(i int) Column {
	if i < 1 || i > MaxColumns {
		return Column{}
	}
	return s.Columns[i-1]
}

// ActiveColumns returns the enabled slots in slot order.
func (s Snapshot) ActiveColumns() []IndexedColumn {
	active := make([]IndexedColumn, 0, MaxColumns)
	for i, col := range s.Columns {
		if col.Taxonomy == "" {
			continue
		}
		active = append(active, IndexedColumn{Index: i + 1, Column: col})
	}
	return active
}

// Override returns the admin label for termID in language, if one is set.
func (s Snapshot) Override(language string, termID int64) (string, bool) {
	labels, ok := s.TermOverrides[language]
	if !ok {
		return "", false
	}
	label, ok := labels[termID]
	if !ok || label == "" {
		return "", false
	}
	return label, true
}
