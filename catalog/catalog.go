/*
Package catalog implements the format-agnostic model for localized string
resources. Format adapters parse files into a Resource; the merge, diff and
sync engines and the validators all operate on Resources without knowing
which file format they came from.

A Resource holds ordered metadata plus an ordered list of entries, where each
entry is one (key, language) translation unit. Within a Resource the pair
(key, language) identifies at most one entry; building a Resource with a
duplicate pair is an error, not a silently-resolved condition.
*/
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category is a CLDR plural form tag.
type Category uint8

const (
	Zero Category = iota
	One
	Two
	Few
	Many
	Other
)

// Categories lists all plural categories in canonical CLDR order.
var Categories = [...]Category{Zero, One, Two, Few, Many, Other}

var categoryNames = [...]string{"zero", "one", "two", "few", "many", "other"}

func (c Category) String() string {
	if int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory converts a category tag like "one" or "other" to a Category.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(s, name) {
			return Category(i), nil
		}
	}
	return Other, fmt.Errorf("catalog: unknown plural category %q", s)
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Status describes the translation state of an entry.
type Status uint8

const (
	New Status = iota
	Translated
	NeedsReview
	Stale
	DoNotTranslate
)

var statusNames = [...]string{"new", "translated", "needs_review", "stale", "do_not_translate"}

func (s Status) String() string {
	if int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus converts a status name like "needs_review" to a Status.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if strings.EqualFold(s, name) {
			return Status(i), nil
		}
	}
	return New, fmt.Errorf("catalog: unknown entry status %q", s)
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Translation is a tagged variant: either a single string or a mapping of
// plural categories to strings. The zero value is an empty singular.
type Translation struct {
	plural bool
	single string
	forms  map[Category]string
}

// Singular builds a singular translation.
func Singular(value string) Translation {
	return Translation{single: value}
}

// Plural builds a plural translation from the given category forms. The map
// is copied; absent categories stay absent (absence is meaningful to the
// plural validator, it is not an implicit empty string).
func Plural(forms map[Category]string) Translation {
	copied := make(map[Category]string, len(forms))
	for c, v := range forms {
		copied[c] = v
	}
	return Translation{plural: true, forms: copied}
}

// IsPlural reports whether the translation carries plural forms.
func (t Translation) IsPlural() bool { return t.plural }

// Single returns the singular value. For plural translations it returns the
// first populated form in category order, so callers that must flatten a
// plural (lossy formats) get a deterministic pick.
func (t Translation) Single() string {
	if !t.plural {
		return t.single
	}
	for _, c := range Categories {
		if v, ok := t.forms[c]; ok {
			return v
		}
	}
	return ""
}

// Form returns the value for one plural category.
func (t Translation) Form(c Category) (string, bool) {
	v, ok := t.forms[c]
	return v, ok
}

// Forms returns a copy of the plural form mapping.
func (t Translation) Forms() map[Category]string {
	copied := make(map[Category]string, len(t.forms))
	for c, v := range t.forms {
		copied[c] = v
	}
	return copied
}

// PopulatedCategories returns the populated categories in canonical order.
func (t Translation) PopulatedCategories() []Category {
	var out []Category
	for _, c := range Categories {
		if _, ok := t.forms[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Equal compares two translations. Plurals are equal only when their
// populated category sets and all form values match.
func (t Translation) Equal(other Translation) bool {
	if t.plural != other.plural {
		return false
	}
	if !t.plural {
		return t.single == other.single
	}
	if len(t.forms) != len(other.forms) {
		return false
	}
	for c, v := range t.forms {
		if w, ok := other.forms[c]; !ok || w != v {
			return false
		}
	}
	return true
}

func (t Translation) String() string {
	if !t.plural {
		return t.single
	}
	parts := make([]string, 0, len(t.forms))
	for _, c := range t.PopulatedCategories() {
		parts = append(parts, fmt.Sprintf("%v=%v", c, t.forms[c]))
	}
	return strings.Join(parts, " | ")
}

func (t Translation) MarshalJSON() ([]byte, error) {
	if !t.plural {
		value, err := json.Marshal(t.single)
		if err != nil {
			return nil, err
		}
		return append(append([]byte(`{"singular":`), value...), '}'), nil
	}

	var buf bytes.Buffer
	buf.WriteString(`{"plural":{`)
	first := true
	for _, c := range t.PopulatedCategories() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		value, err := json.Marshal(t.forms[c])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%q:%s", c.String(), value)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func (t *Translation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Singular *string           `json:"singular"`
		Plural   map[string]string `json:"plural"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Plural != nil {
		forms := make(map[Category]string, len(raw.Plural))
		for name, value := range raw.Plural {
			c, err := ParseCategory(name)
			if err != nil {
				return err
			}
			forms[c] = value
		}
		*t = Translation{plural: true, forms: forms}
		return nil
	}
	if raw.Singular != nil {
		*t = Singular(*raw.Singular)
		return nil
	}
	*t = Singular("")
	return nil
}

// Meta is an ordered string-to-string mapping used for resource metadata and
// per-entry format extension data. Iteration and serialization follow
// insertion order.
type Meta struct {
	keys   []string
	values map[string]string
}

// Set inserts or replaces a value. New keys go to the end of the order.
func (m *Meta) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for a key.
func (m Meta) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m Meta) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m Meta) Len() int { return len(m.keys) }

// Clone returns an independent copy.
func (m Meta) Clone() Meta {
	var out Meta
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// Equal compares two metadata mappings including their ordering.
func (m Meta) Equal(other Meta) bool {
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k || other.values[k] != m.values[k] {
			return false
		}
	}
	return true
}

func (m Meta) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return errors.New("catalog: metadata must be a JSON object")
	}
	*m = Meta{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("catalog: metadata key must be a string")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("catalog: metadata value for %q: %w", key, err)
		}
		m.Set(key, value)
	}
	return nil
}

// Entry is a single (key, language) translation unit.
type Entry struct {
	Key      string      `json:"key"`
	Language string      `json:"language"`
	Value    Translation `json:"value"`
	Status   Status      `json:"status"`
	Comment  string      `json:"comment,omitempty"`
	Custom   Meta        `json:"custom,omitempty"`
}

// ID identifies an entry within a resource.
type ID struct {
	Key      string
	Language string
}

func (id ID) String() string { return id.Key + "/" + id.Language }

// ID returns the entry's identity pair.
func (e Entry) ID() ID { return ID{Key: e.Key, Language: e.Language} }

// Clone returns an independent copy of the entry.
func (e Entry) Clone() Entry {
	out := e
	out.Custom = e.Custom.Clone()
	if e.Value.plural {
		out.Value = Plural(e.Value.forms)
	}
	return out
}

// DuplicateEntryError reports an attempt to build a resource containing the
// same (key, language) pair twice.
type DuplicateEntryError struct {
	Key      string
	Language string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("catalog: duplicate entry for key %q, language %q", e.Key, e.Language)
}

// Resource is one logical localization catalog: ordered metadata plus an
// ordered sequence of entries. Entry order is preserved through parsing and
// serialization; operations that need determinism (diff, stats) sort their
// own output instead of re-ordering the resource.
type Resource struct {
	Metadata Meta    `json:"metadata"`
	Entries  []Entry `json:"entries"`
}

// NewResource creates a resource from entries, enforcing (key, language)
// uniqueness.
func NewResource(metadata Meta, entries []Entry) (Resource, error) {
	r := Resource{Metadata: metadata.Clone()}
	for _, e := range entries {
		if err := r.Append(e); err != nil {
			return Resource{}, err
		}
	}
	return r, nil
}

// Append adds an entry, returning a DuplicateEntryError when the (key,
// language) pair is already present.
func (r *Resource) Append(e Entry) error {
	if _, ok := r.Find(e.Key, e.Language); ok {
		return &DuplicateEntryError{Key: e.Key, Language: e.Language}
	}
	r.Entries = append(r.Entries, e)
	return nil
}

// Find returns the entry with the given key and language.
func (r Resource) Find(key, language string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Key == key && e.Language == language {
			return e, true
		}
	}
	return Entry{}, false
}

// index returns a map from identity to position in Entries.
func (r Resource) index() map[ID]int {
	idx := make(map[ID]int, len(r.Entries))
	for i, e := range r.Entries {
		idx[e.ID()] = i
	}
	return idx
}

// Languages returns the distinct languages in the resource, sorted.
func (r Resource) Languages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.Entries {
		if !seen[e.Language] {
			seen[e.Language] = true
			out = append(out, e.Language)
		}
	}
	sort.Strings(out)
	return out
}

// Keys returns the distinct keys in the resource, sorted.
func (r Resource) Keys() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.Entries {
		if !seen[e.Key] {
			seen[e.Key] = true
			out = append(out, e.Key)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the resource.
func (r Resource) Clone() Resource {
	out := Resource{Metadata: r.Metadata.Clone()}
	out.Entries = make([]Entry, len(r.Entries))
	for i, e := range r.Entries {
		out.Entries[i] = e.Clone()
	}
	return out
}

// Equal compares two resources including metadata and entry order.
func (r Resource) Equal(other Resource) bool {
	if !r.Metadata.Equal(other.Metadata) {
		return false
	}
	if len(r.Entries) != len(other.Entries) {
		return false
	}
	for i, e := range r.Entries {
		o := other.Entries[i]
		if e.Key != o.Key || e.Language != o.Language || e.Status != o.Status ||
			e.Comment != o.Comment || !e.Value.Equal(o.Value) || !e.Custom.Equal(o.Custom) {
			return false
		}
	}
	return true
}
