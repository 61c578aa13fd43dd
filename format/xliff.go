package format

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/WendellXY/langcodec/catalog"
)

// XLIFF reads and writes XLIFF 1.2 files: one <file> element carrying
// source and target languages, with <trans-unit> children holding a
// <source> and a <target> text. Entries are produced for the target
// language; source texts are kept so serialization can emit both sides.
// Singular only.
type XLIFF struct{}

func (XLIFF) Tag() string          { return "xliff" }
func (XLIFF) Extensions() []string { return []string{".xliff", ".xlf"} }

type xliffDocument struct {
	XMLName xml.Name  `xml:"xliff"`
	Version string    `xml:"version,attr"`
	File    xliffFile `xml:"file"`
}

type xliffFile struct {
	SourceLang string      `xml:"source-language,attr"`
	TargetLang string      `xml:"target-language,attr"`
	DataType   string      `xml:"datatype,attr,omitempty"`
	Original   string      `xml:"original,attr,omitempty"`
	Units      []xliffUnit `xml:"body>trans-unit"`
}

type xliffUnit struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source"`
	Target string `xml:"target"`
}

func (f XLIFF) Parse(data []byte, opts Options) (catalog.Resource, error) {
	var doc xliffDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
	}

	targetLang := doc.File.TargetLang
	if opts.Language != "" {
		if targetLang != "" && targetLang != opts.Language {
			if opts.Strict {
				return catalog.Resource{}, &ParseError{
					Format: f.Tag(),
					Err:    fmt.Errorf("file targets language %q, expected %q", targetLang, opts.Language),
				}
			}
			opts.warnf("xliff: file targets language %q, expected %q", targetLang, opts.Language)
		}
		targetLang = opts.Language
	}
	if targetLang == "" {
		return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: fmt.Errorf("missing target-language attribute")}
	}

	var res catalog.Resource
	res.Metadata.Set("source_language", doc.File.SourceLang)
	res.Metadata.Set("language", targetLang)
	if doc.File.Original != "" {
		res.Metadata.Set("original", doc.File.Original)
	}

	for _, unit := range doc.File.Units {
		if unit.ID == "" {
			if opts.Strict {
				return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: fmt.Errorf("trans-unit missing id attribute")}
			}
			opts.warnf("xliff: trans-unit missing id attribute, skipping")
			continue
		}
		entry := catalog.Entry{
			Key:      unit.ID,
			Language: targetLang,
			Value:    catalog.Singular(unit.Target),
			Status:   statusFor(unit.Target),
		}
		if unit.Source != "" {
			entry.Custom.Set("source", unit.Source)
		}
		if err := res.Append(entry); err != nil {
			if opts.Strict {
				return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
			}
			opts.warnf("xliff: %v, keeping first occurrence", err)
		}
	}
	return res, nil
}

func (f XLIFF) Serialize(res catalog.Resource, opts Options) ([]byte, error) {
	lang, entries, err := singleLanguage(f.Tag(), res, opts)
	if err != nil {
		return nil, err
	}

	sourceLang := opts.SourceLanguage
	if sourceLang == "" {
		sourceLang, _ = res.Metadata.Get("source_language")
	}

	// Source texts come from the stored source text when the entry has
	// one, else from the source-language sibling entry.
	doc := xliffDocument{
		Version: "1.2",
		File: xliffFile{
			SourceLang: sourceLang,
			TargetLang: lang,
			DataType:   "plaintext",
		},
	}
	if original, ok := res.Metadata.Get("original"); ok {
		doc.File.Original = original
	}

	for _, e := range entries {
		target, err := flatten(f.Tag(), e.Key, e.Value, opts)
		if err != nil {
			return nil, err
		}
		source, _ := e.Custom.Get("source")
		if source == "" && sourceLang != "" {
			if sibling, ok := res.Find(e.Key, sourceLang); ok {
				source = sibling.Value.Single()
			}
		}
		doc.File.Units = append(doc.File.Units, xliffUnit{
			ID:     e.Key,
			Source: source,
			Target: target,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("xliff: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("xliff: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
