/*
Package placeholder extracts printf-style placeholders from translation
values, reduces them to comparable signatures, and checks that every
language of a key carries the same placeholders as the source language.

Apple and Android spell the same placeholder differently (%@ vs %s, %ld vs
%d); signatures are computed over a normalized form so those variants never
count as mismatches. Real mismatches (different counts, kinds or positions)
are reported and never repaired automatically.
*/
package placeholder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/WendellXY/langcodec/catalog"
)

// Token is one placeholder occurrence. Position is the 1-based positional
// index (%2$d), or 0 when the placeholder is sequential. Verb is the
// canonical lowercase conversion character with %@ mapped to s and length
// modifiers dropped.
type Token struct {
	Position int
	Verb     byte
}

// Signature returns the comparable form of the token, "2$d" or "s".
func (t Token) Signature() string {
	if t.Position > 0 {
		return fmt.Sprintf("%d$%c", t.Position, t.Verb)
	}
	return string(t.Verb)
}

// Kind is the semantic class of a placeholder verb.
type Kind uint8

const (
	String Kind = iota
	Integer
	Unsigned
	Float
	OtherKind
)

// KindOf classifies a canonical verb character.
func KindOf(verb byte) Kind {
	switch verb {
	case 's', 'c':
		return String
	case 'd', 'i', 'x', 'o':
		return Integer
	case 'u':
		return Unsigned
	case 'f', 'e', 'g', 'a':
		return Float
	default:
		return OtherKind
	}
}

// Kind returns the semantic class of the token.
func (t Token) Kind() Kind { return KindOf(t.Verb) }

// span is a token plus its byte range in the scanned string, used by Fix to
// splice replacements.
type span struct {
	tok        Token
	start, end int
}

// scan walks the string byte-wise and returns every placeholder with its
// location. %% escapes are skipped; a % that does not introduce a valid
// placeholder is ignored.
func scan(s string) []span {
	var out []span
	for i := 0; i < len(s); {
		if s[i] != '%' {
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			i += 2
			continue
		}

		j := i + 1
		position := 0

		// Optional positional index: digits followed by '$'.
		digitsEnd := j
		for digitsEnd < len(s) && s[digitsEnd] >= '0' && s[digitsEnd] <= '9' {
			digitsEnd++
		}
		if digitsEnd > j && digitsEnd < len(s) && s[digitsEnd] == '$' {
			for _, c := range []byte(s[j:digitsEnd]) {
				position = position*10 + int(c-'0')
			}
			j = digitsEnd + 1
		}

		// Optional l/ll length modifier, either case.
		if j < len(s) && (s[j] == 'l' || s[j] == 'L') {
			j++
			if j < len(s) && (s[j] == 'l' || s[j] == 'L') {
				j++
			}
		}

		if j < len(s) {
			c := s[j]
			if c == '@' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				out = append(out, span{
					tok:   Token{Position: position, Verb: canonicalVerb(c)},
					start: i,
					end:   j + 1,
				})
				i = j + 1
				continue
			}
		}
		i++
	}
	return out
}

func canonicalVerb(c byte) byte {
	if c == '@' {
		return 's'
	}
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Extract returns the placeholders of a string in occurrence order.
func Extract(s string) []Token {
	spans := scan(s)
	out := make([]Token, len(spans))
	for i, sp := range spans {
		out[i] = sp.tok
	}
	return out
}

// Normalize rewrites every placeholder to its canonical spelling (%@ to %s,
// %ld to %d, %lu to %u, verbs lowercased) while leaving all other text
// untouched.
func Normalize(s string) string {
	spans := scan(s)
	if len(spans) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, sp := range spans {
		b.WriteString(s[last:sp.start])
		b.WriteByte('%')
		if sp.tok.Position > 0 {
			fmt.Fprintf(&b, "%d$", sp.tok.Position)
		}
		b.WriteByte(sp.tok.Verb)
		last = sp.end
	}
	b.WriteString(s[last:])
	return b.String()
}

// Signature returns the ordered normalized placeholder signatures of a
// string, e.g. ["1$s", "2$d", "s"].
func Signature(s string) []string {
	tokens := Extract(s)
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Signature()
	}
	return out
}

// translationSignature reduces a translation to one signature. Plural forms
// are checked individually by Validate; this picks the representative value.
func translationSignature(t catalog.Translation) []string {
	return Signature(t.Single())
}

// Mismatch is one translation whose placeholders differ from the source
// language. Category names the plural form for plural entries.
type Mismatch struct {
	Key      string   `json:"key"`
	Language string   `json:"language"`
	Category string   `json:"category,omitempty"`
	Expected []string `json:"expected"`
	Actual   []string `json:"actual"`
}

func (m Mismatch) String() string {
	where := m.Key
	if m.Category != "" {
		where += "[" + m.Category + "]"
	}
	return fmt.Sprintf("%s (%s): placeholders [%s] do not match source [%s]",
		where, m.Language, strings.Join(m.Actual, " "), strings.Join(m.Expected, " "))
}

// Report lists every placeholder mismatch found in a resource, sorted by key
// then language then plural category.
type Report struct {
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether validation found nothing.
func (r Report) OK() bool { return len(r.Mismatches) == 0 }

// ValidationError wraps a non-empty report in strict mode.
type ValidationError struct {
	Report Report
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("placeholder: %d translations disagree with the source language", len(e.Report.Mismatches))
}

func signaturesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate checks every entry of the resource against the same key's entry
// in sourceLang. Keys without a source-language entry are skipped, as are
// DoNotTranslate entries and the source entries themselves. Plural forms
// are checked form by form. In strict mode a non-empty report is also
// returned as a *ValidationError.
func Validate(res catalog.Resource, sourceLang string, strict bool) (Report, error) {
	expected := make(map[string][]string)
	for _, e := range res.Entries {
		if e.Language == sourceLang {
			expected[e.Key] = translationSignature(e.Value)
		}
	}

	var report Report
	for _, e := range res.Entries {
		if e.Language == sourceLang || e.Status == catalog.DoNotTranslate {
			continue
		}
		want, ok := expected[e.Key]
		if !ok {
			continue
		}
		if !e.Value.IsPlural() {
			got := Signature(e.Value.Single())
			if !signaturesEqual(want, got) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Key: e.Key, Language: e.Language, Expected: want, Actual: got,
				})
			}
			continue
		}
		for _, c := range e.Value.PopulatedCategories() {
			form, _ := e.Value.Form(c)
			got := Signature(form)
			if !signaturesEqual(want, got) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Key: e.Key, Language: e.Language, Category: c.String(),
					Expected: want, Actual: got,
				})
			}
		}
	}

	sort.Slice(report.Mismatches, func(i, j int) bool {
		a, b := report.Mismatches[i], report.Mismatches[j]
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		return a.Category < b.Category
	})
	if strict && !report.OK() {
		return report, &ValidationError{Report: report}
	}
	return report, nil
}

// Fix rewrites the placeholders of value so their verbs match the reference
// string. Only pure syntactic variants are repaired: both strings must
// carry the same number of placeholders with identical positions and
// semantic kinds. Count, position or kind differences return ok=false and
// leave the value alone.
func Fix(value, reference string) (fixed string, ok bool) {
	spans := scan(value)
	want := Extract(reference)
	if len(spans) != len(want) {
		return value, false
	}
	for i, sp := range spans {
		if sp.tok.Position != want[i].Position || sp.tok.Kind() != want[i].Kind() {
			return value, false
		}
	}

	var b strings.Builder
	b.Grow(len(value))
	last := 0
	for i, sp := range spans {
		b.WriteString(value[last:sp.start])
		b.WriteByte('%')
		if want[i].Position > 0 {
			fmt.Fprintf(&b, "%d$", want[i].Position)
		}
		b.WriteByte(want[i].Verb)
		last = sp.end
	}
	b.WriteString(value[last:])
	return b.String(), true
}
