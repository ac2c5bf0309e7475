package value

import (
	"strings"
	"unicode"
)

const fingerprintSeparator = "|"

// Fingerprint is the canonical price-cache key of a gift. Two gifts with equal
// fingerprints are priced identically within a run.
type Fingerprint struct {
	Collection string
	Model      string
	Backdrop   string
}

func NewFingerprint(collection, model, backdrop string) Fingerprint {
	return Fingerprint{
		Collection: normalize(collection),
		Model:      normalize(model),
		Backdrop:   normalize(backdrop),
	}
}

// Key is the tier-2 cache key.
func (f Fingerprint) Key() string {
	return f.Collection + fingerprintSeparator + f.Model + fingerprintSeparator + f.Backdrop
}

func (f Fingerprint) String() string {
	return f.Key()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CollectionFromSlug extracts the collection part of "LunarSnake-121736".
func CollectionFromSlug(slug string) string {
	if i := strings.LastIndexByte(slug, '-'); i > 0 {
		return slug[:i]
	}
	return slug
}

// CollectionFromTitle squeezes a display title into slug form:
// "Durov's Cap" becomes "DurovsCap".
func CollectionFromTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, title)
}
