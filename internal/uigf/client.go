// Package uigf fetches the UIGF item dictionary that maps localized
// character names to item ids.
package uigf

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/upstream"
)

// BaseURL is the public dictionary endpoint.
const BaseURL = "https://api.uigf.org"

// DefaultLang is the dictionary language used by the reports.
const DefaultLang = "chs"

// Client fetches dictionaries.
type Client struct {
	BaseURL string
	Getter  *upstream.Getter
}

// NewClient creates a client for baseURL. An empty baseURL uses BaseURL.
func NewClient(baseURL string, getter *upstream.Getter) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if getter == nil {
		getter = upstream.NewGetter(upstream.DefaultTimeout)
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Getter:  getter,
	}
}

// DictURL returns the dictionary URL for a language.
func (c *Client) DictURL(lang string) string {
	if lang == "" {
		lang = DefaultLang
	}
	return fmt.Sprintf("%s/dict/genshin/%s.json", c.BaseURL, lang)
}

// FetchNames returns item id -> localized name. The dictionary is published
// as name -> id, so it is inverted here. The Traveler is always present.
func (c *Client) FetchNames(ctx context.Context, lang string) (map[int]string, error) {
	var dict map[string]int
	err := c.Getter.Fetch(ctx, domain.SourceNames, c.DictURL(lang), func(body []byte) error {
		dict = nil
		if err := json.Unmarshal(body, &dict); err != nil {
			return fmt.Errorf("failed to parse dictionary: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch dictionary: %w", err)
	}

	return Invert(dict), nil
}

// Invert turns a name -> id dictionary into id -> name and applies the
// Traveler override. When two names share an id the lexically smallest wins,
// so the result does not depend on map iteration order.
func Invert(dict map[string]int) map[int]string {
	names := make(map[int]string, len(dict)+1)
	for name, id := range dict {
		if existing, ok := names[id]; ok && existing < name {
			continue
		}
		names[id] = name
	}
	names[domain.TravelerID] = domain.TravelerName
	return names
}
