package settings

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Resolve merges a persisted record with Defaults. It never fails: each field
// that is absent or malformed falls back to its default on its own, and
// unrecognized keys are ignored.
func Resolve(p Partial) Snapshot {
	s := Defaults()
	if p == nil {
		return s
	}

	if raw, ok := p[KeyColumns]; ok {
		s.Columns = resolveColumns(raw)
	}
	if raw, ok := p[KeyOrderBy]; ok {
		s.OrderBy = parseOrderBy(raw)
	}
	if raw, ok := p[KeyHideEmpty]; ok {
		s.HideEmpty = parseFlag(raw, s.HideEmpty)
	}
	if raw, ok := p[KeyShowCounts]; ok {
		s.ShowCounts = parseFlag(raw, s.ShowCounts)
	}
	if raw, ok := p[KeyBaseURLType]; ok {
		s.BaseURLType = parseBaseURLType(raw)
	}
	if raw, ok := p[KeyBaseCategory]; ok {
		s.BaseCategoryID = absInt(raw)
	}
	if raw, ok := p[KeyContainerTitle]; ok {
		if title, err := cast.ToStringE(raw); err == nil {
			s.ContainerTitle = title
		}
	}
	if raw, ok := p[KeyTermOverrides]; ok {
		s.TermOverrides = resolveOverrides(raw)
	}
	if raw, ok := p[KeyNumColumns]; ok {
		s.NumColumns = clampColumns(raw)
	}

	return s
}

// ToPartial renders the snapshot in its persisted layout.
func (s Snapshot) ToPartial() Partial {
	columns := make(map[string]any, MaxColumns)
	for i, col := range s.Columns {
		columns[strconv.Itoa(i+1)] = map[string]any{
			"taxonomy": col.Taxonomy,
			"heading":  col.Heading,
		}
	}

	overrides := make(map[string]any, len(s.TermOverrides))
	for lang, labels := range s.TermOverrides {
		encoded := make(map[string]any, len(labels))
		for id, label := range labels {
			encoded[termIDKey(id)] = label
		}
		overrides[lang] = encoded
	}

	return Partial{
		KeyColumns:        columns,
		KeyOrderBy:        string(s.OrderBy),
		KeyHideEmpty:      s.HideEmpty,
		KeyShowCounts:     s.ShowCounts,
		KeyBaseURLType:    string(s.BaseURLType),
		KeyBaseCategory:   s.BaseCategoryID,
		KeyContainerTitle: s.ContainerTitle,
		KeyTermOverrides:  overrides,
		KeyNumColumns:     s.NumColumns,
	}
}

// resolveColumns accepts an object keyed "1".."6" or a list where element 0
// is slot 1. Slots that are missing or malformed stay empty.
func resolveColumns(raw any) [MaxColumns]Column {
	var columns [MaxColumns]Column

	if list, err := cast.ToSliceE(raw); err == nil {
		for i, item := range list {
			if i >= MaxColumns {
				break
			}
			columns[i] = resolveColumn(item)
		}
		return columns
	}

	slots, err := cast.ToStringMapE(raw)
	if err != nil {
		return columns
	}
	for key, item := range slots {
		idx, err := toDecimal(key)
		if err != nil || idx < 1 || idx > MaxColumns {
			continue
		}
		columns[idx-1] = resolveColumn(item)
	}
	return columns
}

func resolveColumn(raw any) Column {
	fields, err := cast.ToStringMapE(raw)
	if err != nil {
		return Column{}
	}
	taxonomy, _ := cast.ToStringE(fields["taxonomy"])
	heading, _ := cast.ToStringE(fields["heading"])
	return Column{Taxonomy: taxonomy, Heading: heading}
}

// resolveOverrides keeps positive term ids with non-empty labels.
func resolveOverrides(raw any) map[string]map[int64]string {
	overrides := map[string]map[int64]string{}

	languages, err := cast.ToStringMapE(raw)
	if err != nil {
		return overrides
	}

	for lang, rawLabels := range languages {
		labels, err := cast.ToStringMapE(rawLabels)
		if err != nil {
			continue
		}
		for rawID, rawLabel := range labels {
			id, err := toDecimal(rawID)
			if err != nil || id <= 0 {
				continue
			}
			label, err := cast.ToStringE(rawLabel)
			if err != nil || label == "" {
				continue
			}
			if overrides[lang] == nil {
				overrides[lang] = map[int64]string{}
			}
			overrides[lang][id] = label
		}
	}
	return overrides
}

func parseOrderBy(raw any) OrderBy {
	switch strings.TrimSpace(cast.ToString(raw)) {
	case string(OrderByPriority), "menu_order":
		return OrderByPriority
	case string(OrderByCount):
		return OrderByCount
	default:
		return OrderByName
	}
}

func parseBaseURLType(raw any) BaseURLType {
	if strings.TrimSpace(cast.ToString(raw)) == string(BaseURLCategory) {
		return BaseURLCategory
	}
	return BaseURLShop
}

// parseFlag follows form semantics: "", "0", "false", "off" and "no" are
// false, any other string is true.
func parseFlag(raw any, fallback bool) bool {
	if s, ok := raw.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "0", "false", "off", "no":
			return false
		default:
			return true
		}
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		return fallback
	}
	return v
}

// toDecimal reads integers written in base 10. Strings with leading zeros
// stay decimal ("012" is 12).
func toDecimal(raw any) (int64, error) {
	s, ok := raw.(string)
	if !ok {
		return cast.ToInt64E(raw)
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func absInt(raw any) int {
	n64, err := toDecimal(raw)
	if err != nil {
		return 0
	}
	n := int(n64)
	if n < 0 {
		return -n
	}
	return n
}

func clampColumns(raw any) int {
	n, err := toDecimal(raw)
	if err != nil || n < 1 || n > MaxColumns {
		return DefaultNumColumns
	}
	return int(n)
}
