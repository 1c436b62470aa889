package settings

import (
	"strconv"

	"github.com/spf13/cast"
)

// Sanitize normalizes admin input into the persisted layout. Column
// taxonomies not present in attributeTaxonomies are cleared; a nil list
// disables that check. Text is stripped of markup, override language keys
// are normalized, overrides without a positive term id or a label are
// dropped, and num_columns is clamped.
func Sanitize(input Partial, attributeTaxonomies []string) Partial {
	snap := Resolve(input)

	var allowed map[string]struct{}
	if attributeTaxonomies != nil {
		allowed = make(map[string]struct{}, len(attributeTaxonomies))
		for _, name := range attributeTaxonomies {
			allowed[name] = struct{}{}
		}
	}

	for i, col := range snap.Columns {
		col.Taxonomy = sanitizeText(col.Taxonomy)
		if allowed != nil {
			if _, ok := allowed[col.Taxonomy]; !ok {
				col.Taxonomy = ""
			}
		}
		col.Heading = sanitizeText(col.Heading)
		snap.Columns[i] = col
	}

	snap.ContainerTitle = sanitizeText(snap.ContainerTitle)
	snap.TermOverrides = sanitizeOverrides(input[KeyTermOverrides])

	return snap.ToPartial()
}

// sanitizeOverrides reads the raw override tree so labels are checked after
// cleaning: a label that is only markup is dropped like an empty one.
func sanitizeOverrides(raw any) map[string]map[int64]string {
	clean := map[string]map[int64]string{}

	languages, err := cast.ToStringMapE(raw)
	if err != nil {
		return clean
	}

	for rawLang, rawLabels := range languages {
		lang := sanitizeKey(rawLang)
		if lang == "" {
			continue
		}
		labels, err := cast.ToStringMapE(rawLabels)
		if err != nil {
			continue
		}
		for rawID, rawLabel := range labels {
			id := int64(absInt(rawID))
			if id == 0 {
				continue
			}
			label := sanitizeText(cast.ToString(rawLabel))
			if label == "" {
				continue
			}
			if clean[lang] == nil {
				clean[lang] = map[int64]string{}
			}
			clean[lang][id] = label
		}
	}
	return clean
}

// termIDKey formats an override term id as the persisted map key.
func termIDKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
