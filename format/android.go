package format

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/WendellXY/langcodec/catalog"
)

// Android reads and writes Android strings.xml resources: <string> elements
// plus <plurals> with per-quantity <item> children. The file itself never
// names its language; Android derives it from the values-xx directory, so
// callers pass it through Options.Language (see InferLanguage).
type Android struct{}

func (Android) Tag() string          { return "android" }
func (Android) Extensions() []string { return []string{".xml"} }

type androidResources struct {
	XMLName xml.Name         `xml:"resources"`
	Strings []androidString  `xml:"string"`
	Plurals []androidPlurals `xml:"plurals"`
}

type androidString struct {
	Name         string `xml:"name,attr"`
	Translatable string `xml:"translatable,attr,omitempty"`
	Value        string `xml:",chardata"`
}

type androidPlurals struct {
	Name         string        `xml:"name,attr"`
	Translatable string        `xml:"translatable,attr,omitempty"`
	Items        []androidItem `xml:"item"`
}

type androidItem struct {
	Quantity string `xml:"quantity,attr"`
	Value    string `xml:",chardata"`
}

func (f Android) Parse(data []byte, opts Options) (catalog.Resource, error) {
	var doc androidResources
	if err := xml.Unmarshal(data, &doc); err != nil {
		return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
	}

	var res catalog.Resource
	if opts.Language != "" {
		res.Metadata.Set("language", opts.Language)
	}

	add := func(e catalog.Entry) error {
		if err := res.Append(e); err != nil {
			if opts.Strict {
				return &ParseError{Format: f.Tag(), Err: err}
			}
			opts.warnf("android: %v, keeping first occurrence", err)
		}
		return nil
	}

	for _, s := range doc.Strings {
		if s.Name == "" {
			return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: fmt.Errorf("string element missing name attribute")}
		}
		status := statusFor(s.Value)
		if s.Translatable == "false" {
			status = catalog.DoNotTranslate
		}
		if err := add(catalog.Entry{
			Key:      s.Name,
			Language: opts.Language,
			Value:    catalog.Singular(s.Value),
			Status:   status,
		}); err != nil {
			return catalog.Resource{}, err
		}
	}

	for _, p := range doc.Plurals {
		if p.Name == "" {
			return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: fmt.Errorf("plurals element missing name attribute")}
		}
		forms := make(map[catalog.Category]string, len(p.Items))
		for _, item := range p.Items {
			c, err := catalog.ParseCategory(item.Quantity)
			if err != nil {
				if opts.Strict {
					return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
				}
				opts.warnf("android: plurals %q: %v, skipping item", p.Name, err)
				continue
			}
			forms[c] = item.Value
		}
		status := catalog.Translated
		if len(forms) == 0 {
			status = catalog.New
		}
		if p.Translatable == "false" {
			status = catalog.DoNotTranslate
		}
		if err := add(catalog.Entry{
			Key:      p.Name,
			Language: opts.Language,
			Value:    catalog.Plural(forms),
			Status:   status,
		}); err != nil {
			return catalog.Resource{}, err
		}
	}
	return res, nil
}

func (f Android) Serialize(res catalog.Resource, opts Options) ([]byte, error) {
	_, entries, err := singleLanguage(f.Tag(), res, opts)
	if err != nil {
		return nil, err
	}

	var doc androidResources
	for _, e := range entries {
		translatable := ""
		if e.Status == catalog.DoNotTranslate {
			translatable = "false"
		}
		if e.Value.IsPlural() {
			p := androidPlurals{Name: e.Key, Translatable: translatable}
			for _, c := range e.Value.PopulatedCategories() {
				v, _ := e.Value.Form(c)
				p.Items = append(p.Items, androidItem{Quantity: c.String(), Value: v})
			}
			doc.Plurals = append(doc.Plurals, p)
			continue
		}
		doc.Strings = append(doc.Strings, androidString{
			Name:         e.Key,
			Translatable: translatable,
			Value:        e.Value.Single(),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("android: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("android: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
