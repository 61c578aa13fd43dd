/*
Package plural validates plural translations against the set of CLDR
categories a locale requires. The rule table is data, not logic: a curated
built-in table covers common locales, and a YAML file can override or extend
it per deployment. Unknown locales require only "other" so validation stays
quiet instead of guessing.
*/
package plural

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/WendellXY/langcodec/catalog"
)

// CategorySet is a set of plural categories.
type CategorySet map[catalog.Category]bool

// NewCategorySet builds a set from the given categories.
func NewCategorySet(cats ...catalog.Category) CategorySet {
	s := make(CategorySet, len(cats))
	for _, c := range cats {
		s[c] = true
	}
	return s
}

// Slice returns the members in canonical category order.
func (s CategorySet) Slice() []catalog.Category {
	var out []catalog.Category
	for _, c := range catalog.Categories {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}

func (s CategorySet) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s.Slice() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

// Rules maps a base language subtag to its required plural categories.
type Rules map[string]CategorySet

// DefaultRules returns the built-in table, a curated CLDR subset keyed by
// base language subtag.
func DefaultRules() Rules {
	oneOther := []catalog.Category{catalog.One, catalog.Other}
	otherOnly := []catalog.Category{catalog.Other}
	slavic := []catalog.Category{catalog.One, catalog.Few, catalog.Many, catalog.Other}
	oneFewOther := []catalog.Category{catalog.One, catalog.Few, catalog.Other}

	rules := make(Rules)
	add := func(cats []catalog.Category, langs ...string) {
		for _, l := range langs {
			rules[l] = NewCategorySet(cats...)
		}
	}

	add(oneOther,
		"en", "de", "nl", "sv", "da", "nb", "nn", "no", "is", "fi", "et",
		"fa", "hi", "bn", "gu", "ta", "te", "kn", "ml", "mr", "it",
		"es", "pt", "mk", "el", "eu", "gl", "af", "sw",
		"ur", "fil", "tl", "tr", "id", "ms",
		"fr", "hy", "kab")
	add(otherOnly, "ja", "zh", "ko", "th", "vi", "km", "lo", "my", "yue")
	add(slavic, "ru", "uk", "be", "sr", "hr", "bs", "sh", "pl")
	add(oneFewOther, "cs", "sk", "lt", "ro")
	add([]catalog.Category{catalog.One, catalog.Two, catalog.Few, catalog.Other}, "sl")
	add([]catalog.Category{catalog.Zero, catalog.One, catalog.Other}, "lv")
	add([]catalog.Category{catalog.One, catalog.Two, catalog.Few, catalog.Many, catalog.Other}, "ga")
	add([]catalog.Category{catalog.Zero, catalog.One, catalog.Two, catalog.Few, catalog.Many, catalog.Other}, "ar")
	add([]catalog.Category{catalog.One, catalog.Two, catalog.Many, catalog.Other}, "he", "iw")
	return rules
}

// LoadRulesFile reads a YAML rule table mapping language subtags to category
// lists and merges it over the built-in defaults. Listed languages replace
// their default entry entirely.
//
//	pl: [one, few, many, other]
//	xx: [other]
func LoadRulesFile(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plural: reading rules file: %w", err)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("plural: parsing rules file %s: %w", path, err)
	}

	rules := DefaultRules()
	for lang, names := range raw {
		set := make(CategorySet, len(names))
		for _, name := range names {
			c, err := catalog.ParseCategory(name)
			if err != nil {
				return nil, fmt.Errorf("plural: rules file %s, language %q: %w", path, lang, err)
			}
			set[c] = true
		}
		rules[baseLanguage(lang)] = set
	}
	return rules, nil
}

// baseLanguage extracts the lowercase base subtag from a locale identifier,
// accepting both hyphenated and underscored forms ("pt-BR", "zh_Hant").
func baseLanguage(lang string) string {
	lang = strings.ToLower(strings.ReplaceAll(lang, "_", "-"))
	if i := strings.IndexByte(lang, '-'); i >= 0 {
		lang = lang[:i]
	}
	return lang
}

// Required returns the categories the locale requires. Unknown locales
// require only Other.
func (r Rules) Required(lang string) CategorySet {
	if set, ok := r[baseLanguage(lang)]; ok {
		return set
	}
	return NewCategorySet(catalog.Other)
}

// Missing returns the required categories a translation does not populate,
// in canonical order. Singular translations never miss categories.
func (r Rules) Missing(lang string, t catalog.Translation) []catalog.Category {
	if !t.IsPlural() {
		return nil
	}
	required := r.Required(lang)
	var out []catalog.Category
	for _, c := range catalog.Categories {
		if !required[c] {
			continue
		}
		if _, ok := t.Form(c); !ok {
			out = append(out, c)
		}
	}
	return out
}

// Finding is one plural entry missing required categories.
type Finding struct {
	Key      string             `json:"key"`
	Language string             `json:"language"`
	Missing  []catalog.Category `json:"missing"`
}

func (f Finding) String() string {
	names := make([]string, len(f.Missing))
	for i, c := range f.Missing {
		names[i] = c.String()
	}
	return fmt.Sprintf("%s (%s): missing plural categories %s",
		f.Key, f.Language, strings.Join(names, ", "))
}

// Report lists every finding in a validated resource, sorted by key then
// language.
type Report struct {
	Findings []Finding `json:"findings"`
}

// OK reports whether validation found nothing.
func (r Report) OK() bool { return len(r.Findings) == 0 }

// ValidationError wraps a non-empty report in strict mode.
type ValidationError struct {
	Report Report
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plural: %d entries missing required categories", len(e.Report.Findings))
}

// ValidateResource checks every plural entry against the rule table. In
// strict mode a non-empty report is also returned as a *ValidationError;
// otherwise the report alone carries the findings.
func ValidateResource(res catalog.Resource, rules Rules, strict bool) (Report, error) {
	var report Report
	for _, e := range res.Entries {
		if e.Status == catalog.DoNotTranslate {
			continue
		}
		missing := rules.Missing(e.Language, e.Value)
		if len(missing) > 0 {
			report.Findings = append(report.Findings, Finding{
				Key:      e.Key,
				Language: e.Language,
				Missing:  missing,
			})
		}
	}
	sort.Slice(report.Findings, func(i, j int) bool {
		if report.Findings[i].Key != report.Findings[j].Key {
			return report.Findings[i].Key < report.Findings[j].Key
		}
		return report.Findings[i].Language < report.Findings[j].Language
	})
	if strict && !report.OK() {
		return report, &ValidationError{Report: report}
	}
	return report, nil
}
