package format

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/WendellXY/langcodec/catalog"
)

// XCStrings reads and writes Apple String Catalog (.xcstrings) files. It is
// the only built-in file format that carries several languages in one file,
// including per-language plural variations and per-key extraction state.
type XCStrings struct{}

func (XCStrings) Tag() string          { return "xcstrings" }
func (XCStrings) Extensions() []string { return []string{".xcstrings"} }

type xcDocument struct {
	SourceLanguage string            `json:"sourceLanguage"`
	Version        string            `json:"version"`
	Strings        map[string]xcItem `json:"strings"`
}

type xcItem struct {
	Comment         string                    `json:"comment,omitempty"`
	ExtractionState string                    `json:"extractionState,omitempty"`
	ShouldTranslate *bool                     `json:"shouldTranslate,omitempty"`
	Localizations   map[string]xcLocalization `json:"localizations,omitempty"`
}

type xcLocalization struct {
	StringUnit *xcStringUnit `json:"stringUnit,omitempty"`
	Variations *xcVariations `json:"variations,omitempty"`
}

type xcStringUnit struct {
	State string `json:"state"`
	Value string `json:"value"`
}

type xcVariations struct {
	Plural map[string]xcLocalization `json:"plural,omitempty"`
}

// xcstrings state names differ from the catalog's status names.
var xcStateToStatus = map[string]catalog.Status{
	"new":              catalog.New,
	"translated":       catalog.Translated,
	"needs_review":     catalog.NeedsReview,
	"stale":            catalog.Stale,
	"do_not_translate": catalog.DoNotTranslate,
}

func statusToXCState(s catalog.Status) string { return s.String() }

const defaultXCVersion = "1.0"

func (f XCStrings) Parse(data []byte, opts Options) (catalog.Resource, error) {
	var doc xcDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
	}

	var res catalog.Resource
	res.Metadata.Set("source_language", doc.SourceLanguage)
	version := doc.Version
	if version == "" {
		version = defaultXCVersion
	}
	res.Metadata.Set("version", version)

	for _, key := range sortedKeys(doc.Strings) {
		item := doc.Strings[key]
		for _, lang := range sortedKeys(item.Localizations) {
			loc := item.Localizations[lang]
			entry := catalog.Entry{
				Key:      key,
				Language: lang,
				Comment:  item.Comment,
			}
			if item.ExtractionState != "" {
				entry.Custom.Set("extraction_state", item.ExtractionState)
			}

			switch {
			case loc.StringUnit != nil:
				entry.Value = catalog.Singular(loc.StringUnit.Value)
				entry.Status = f.status(loc.StringUnit.State, opts)
			case loc.Variations != nil:
				forms := make(map[catalog.Category]string, len(loc.Variations.Plural))
				state := "translated"
				for name, variation := range loc.Variations.Plural {
					c, err := catalog.ParseCategory(name)
					if err != nil {
						if opts.Strict {
							return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
						}
						opts.warnf("xcstrings: key %q: %v, skipping variation", key, err)
						continue
					}
					if variation.StringUnit == nil {
						continue
					}
					forms[c] = variation.StringUnit.Value
					state = variation.StringUnit.State
				}
				entry.Value = catalog.Plural(forms)
				entry.Status = f.status(state, opts)
			default:
				entry.Value = catalog.Singular("")
				entry.Status = catalog.New
			}

			if item.ShouldTranslate != nil && !*item.ShouldTranslate {
				entry.Status = catalog.DoNotTranslate
			}
			if err := res.Append(entry); err != nil {
				return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
			}
		}

		// Keys can exist without localizations yet; keep them for the
		// source language so they are not silently dropped.
		if len(item.Localizations) == 0 {
			entry := catalog.Entry{
				Key:      key,
				Language: doc.SourceLanguage,
				Value:    catalog.Singular(""),
				Status:   catalog.New,
				Comment:  item.Comment,
			}
			if item.ShouldTranslate != nil && !*item.ShouldTranslate {
				entry.Status = catalog.DoNotTranslate
			}
			if err := res.Append(entry); err != nil {
				return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
			}
		}
	}
	return res, nil
}

func (f XCStrings) status(state string, opts Options) catalog.Status {
	if s, ok := xcStateToStatus[state]; ok {
		return s
	}
	opts.warnf("xcstrings: unknown state %q, treating as needs_review", state)
	return catalog.NeedsReview
}

func (f XCStrings) Serialize(res catalog.Resource, opts Options) ([]byte, error) {
	doc := xcDocument{
		Strings: make(map[string]xcItem),
	}
	doc.SourceLanguage = opts.SourceLanguage
	if doc.SourceLanguage == "" {
		doc.SourceLanguage, _ = res.Metadata.Get("source_language")
	}
	doc.Version = opts.Version
	if doc.Version == "" {
		if v, ok := res.Metadata.Get("version"); ok {
			doc.Version = v
		} else {
			doc.Version = defaultXCVersion
		}
	}

	for _, e := range res.Entries {
		item, ok := doc.Strings[e.Key]
		if !ok {
			item = xcItem{Localizations: make(map[string]xcLocalization)}
		}
		if e.Comment != "" && item.Comment == "" {
			item.Comment = e.Comment
		}
		if state, ok := e.Custom.Get("extraction_state"); ok {
			item.ExtractionState = state
		}
		if e.Status == catalog.DoNotTranslate {
			no := false
			item.ShouldTranslate = &no
		}

		var loc xcLocalization
		if e.Value.IsPlural() {
			variations := &xcVariations{Plural: make(map[string]xcLocalization)}
			for _, c := range e.Value.PopulatedCategories() {
				v, _ := e.Value.Form(c)
				variations.Plural[c.String()] = xcLocalization{
					StringUnit: &xcStringUnit{State: statusToXCState(e.Status), Value: v},
				}
			}
			loc.Variations = variations
		} else {
			loc.StringUnit = &xcStringUnit{State: statusToXCState(e.Status), Value: e.Value.Single()}
		}
		item.Localizations[e.Language] = loc
		doc.Strings[e.Key] = item
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("xcstrings: %w", err)
	}
	return append(data, '\n'), nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
