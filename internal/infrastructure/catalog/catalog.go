// Package catalog loads the static gift reference table.
package catalog

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
	"giftfolio/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type Catalog struct {
	entries map[int64]entity.CatalogEntry
	byName  map[string]int64
}

// Load reads {"<gift_id>": {short_name, full_name, supply, floor_price}}.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.CatalogInvalid, "gift catalog unreadable")
	}

	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var raw map[string]entity.CatalogEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domain.WrapError(err, errcodes.CatalogInvalid, "gift catalog is not valid JSON")
	}

	c := &Catalog{
		entries: make(map[int64]entity.CatalogEntry, len(raw)),
		byName:  make(map[string]int64, 2*len(raw)), //nolint:mnd
	}

	for key, entry := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, domain.WrapError(fmt.Errorf("key %q: %w", key, err), errcodes.CatalogInvalid, "gift catalog has a non-numeric id")
		}

		entry.ID = id
		c.entries[id] = entry

		for _, name := range []string{entry.ShortName, entry.FullName} {
			if n := NormalizeName(name); n != "" {
				c.byName[n] = id
			}
		}
	}

	return c, nil
}

// IDByName matches a marketplace collection name exactly after normalization.
func (c *Catalog) IDByName(name string) (int64, bool) {
	id, ok := c.byName[NormalizeName(name)]
	return id, ok
}

// Floor is the last known floor price.
func (c *Catalog) Floor(id int64) (decimal.Decimal, bool) {
	entry, ok := c.entries[id]
	if !ok {
		return decimal.Decimal{}, false
	}
	return entry.FloorPrice, true
}

func (c *Catalog) Entry(id int64) (entity.CatalogEntry, bool) {
	entry, ok := c.entries[id]
	return entry, ok
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// NormalizeName keeps lowercase letters and digits: "Durov's Cap" is "durovscap".
func NormalizeName(name string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
