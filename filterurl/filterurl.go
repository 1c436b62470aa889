// Package filterurl builds the storefront links behind each term.
package filterurl

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-quickattributes/settings"
	"github.com/goliatone/go-quickattributes/terms"
)

// ParamPrefix prefixes the attribute name in the filter query parameter.
const ParamPrefix = "filter_"

// BaseURLProvider resolves the pages filter links point at.
type BaseURLProvider interface {
	ShopURL(language string) string
	// CategoryURL reports false when no page exists for categoryID.
	CategoryURL(categoryID int, language string) (string, bool)
}

// Build returns the link filtering base by term: the category page when the
// snapshot targets a category, the shop page otherwise, with
// filter_<attribute>=<slug> merged into its query string.
func Build(taxonomy string, term terms.Record, snap settings.Snapshot, language string, provider BaseURLProvider) string {
	base := BaseURL(snap, language, provider)
	param := ParamPrefix + terms.AttributeName(taxonomy)

	u, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + url.QueryEscape(param) + "=" + url.QueryEscape(term.Slug)
	}

	q := u.Query()
	q.Set(param, term.Slug)
	u.RawQuery = q.Encode()
	return u.String()
}

// BaseURL picks the page links for snap point at.
func BaseURL(snap settings.Snapshot, language string, provider BaseURLProvider) string {
	if snap.BaseURLType == settings.BaseURLCategory && snap.BaseCategoryID != 0 {
		if link, ok := provider.CategoryURL(snap.BaseCategoryID, language); ok && link != "" {
			return link
		}
	}
	return provider.ShopURL(language)
}

// Placeholders substituted in SiteURLs category patterns.
const (
	PlaceholderID   = "{id}"
	PlaceholderLang = "{lang}"
)

// Site holds the pages of one language. CategoryPattern builds category
// links, e.g. "https://shop.test/{lang}/c/{id}/".
type Site struct {
	ShopURL         string `mapstructure:"shop_url" json:"shop_url"`
	CategoryPattern string `mapstructure:"category_pattern" json:"category_pattern"`
}

// SiteURLs is a BaseURLProvider driven by configuration. Languages without an
// entry use Default.
type SiteURLs struct {
	Default   Site            `mapstructure:"default" json:"default"`
	Languages map[string]Site `mapstructure:"languages" json:"languages"`
}

func (s SiteURLs) site(language string) Site {
	if site, ok := s.Languages[language]; ok {
		if site.ShopURL == "" {
			site.ShopURL = s.Default.ShopURL
		}
		if site.CategoryPattern == "" {
			site.CategoryPattern = s.Default.CategoryPattern
		}
		return site
	}
	return s.Default
}

// ShopURL implements BaseURLProvider.
func (s SiteURLs) ShopURL(language string) string {
	if shop := s.site(language).ShopURL; shop != "" {
		return shop
	}
	return "/shop/"
}

// CategoryURL implements BaseURLProvider.
func (s SiteURLs) CategoryURL(categoryID int, language string) (string, bool) {
	pattern := s.site(language).CategoryPattern
	if pattern == "" || categoryID <= 0 {
		return "", false
	}
	link := strings.ReplaceAll(pattern, PlaceholderID, strconv.Itoa(categoryID))
	link = strings.ReplaceAll(link, PlaceholderLang, url.PathEscape(language))
	return link, true
}
