package post

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrBagKeyExists is returned when a Set would destructively overwrite
// an already recorded value.
var ErrBagKeyExists = errors.New("platform metadata key already set")

// MetadataBag is the open, namespaced provider-metadata mapping on a post
// (news pick, image provenance, fake-news markers). It is additive only:
// later revisions may add keys but never replace recorded ones.
// The zero value is an empty bag.
type MetadataBag []byte

// MarshalJSON renders the bag as a raw JSON object.
func (b MetadataBag) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("{}"), nil
	}
	return b, nil
}

// UnmarshalJSON accepts the raw JSON object as-is.
func (b *MetadataBag) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("platform metadata is not valid JSON")
	}
	*b = append((*b)[:0], data...)
	return nil
}

// Has reports whether a dotted path is present.
func (b MetadataBag) Has(path string) bool {
	return gjson.GetBytes(b, path).Exists()
}

// Get returns the value at a dotted path.
func (b MetadataBag) Get(path string) gjson.Result {
	return gjson.GetBytes(b, path)
}

// Set writes a value at a dotted path. Setting a path that already holds a
// value fails with ErrBagKeyExists; the bag is never destructively rewritten.
func (b *MetadataBag) Set(path string, value interface{}) error {
	if b.Has(path) {
		return fmt.Errorf("%w: %s", ErrBagKeyExists, path)
	}
	out, err := sjson.SetBytes(*b, path, value)
	if err != nil {
		return fmt.Errorf("set platform metadata %s: %w", path, err)
	}
	*b = out
	return nil
}

// SetDefault writes a value only when the path is still empty.
// Unlike Set it reports no error for an already recorded value.
func (b *MetadataBag) SetDefault(path string, value interface{}) error {
	if b.Has(path) {
		return nil
	}
	return b.Set(path, value)
}
