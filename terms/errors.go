package terms

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to term errors.
const (
	TextCodeTaxonomyNotFound = "TAXONOMY_NOT_FOUND"
	TextCodeStoreFailure     = "TERM_STORE_FAILURE"
)

// NotFound reports an empty or unregistered taxonomy.
func NotFound(taxonomy string) error {
	return goerrors.New("taxonomy not found: "+taxonomy, goerrors.CategoryNotFound).
		WithTextCode(TextCodeTaxonomyNotFound).
		WithMetadata(map[string]any{"taxonomy": taxonomy})
}

// StoreError wraps a backend failure raised while querying terms.
func StoreError(err error, taxonomy string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "term store query failed").
		WithTextCode(TextCodeStoreFailure).
		WithMetadata(map[string]any{"taxonomy": taxonomy})
}

// IsNotFound reports whether err is a taxonomy lookup miss.
func IsNotFound(err error) bool {
	return hasCategory(err, goerrors.CategoryNotFound)
}

// IsStoreError reports whether err is a term store backend failure.
func IsStoreError(err error) bool {
	return hasCategory(err, goerrors.CategoryExternal)
}

func hasCategory(err error, category goerrors.Category) bool {
	var target *goerrors.Error
	if !errors.As(err, &target) {
		return false
	}
	return target.Category == category
}
