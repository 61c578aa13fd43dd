/*
Package format converts between on-disk localization file formats and the
catalog resource model. Every format implements the same contract and is
looked up through a registry, so the engines and the CLI never special-case
a format.
*/
package format

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/WendellXY/langcodec/catalog"
)

// Options controls parsing and serialization.
type Options struct {
	// Strict makes lossy or ambiguous situations fail instead of degrading
	// with a warning.
	Strict bool
	// Language assigns entries a language for formats that cannot express
	// one themselves, and filters serialization for single-language formats.
	Language string
	// SourceLanguage is the reference language for formats that carry both
	// a source and a target text.
	SourceLanguage string
	// Version overrides the format version written, where applicable.
	Version string
	// Warn receives non-fatal degradation notices in permissive mode.
	Warn func(msg string)
}

func (o Options) warnf(format string, args ...interface{}) {
	if o.Warn != nil {
		o.Warn(fmt.Sprintf(format, args...))
	}
}

// Format parses and serializes one localization file format.
type Format interface {
	// Tag returns the registry name, e.g. "android".
	Tag() string
	// Extensions returns the file extensions the format claims, with dot.
	Extensions() []string
	Parse(data []byte, opts Options) (catalog.Resource, error)
	Serialize(res catalog.Resource, opts Options) ([]byte, error)
}

// ParseError describes a malformed input file.
type ParseError struct {
	Format string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError describes a resource the format cannot express in strict mode.
type WriteError struct {
	Format string
	Reason string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Format, e.Reason)
}

// Registry maps format tags to implementations and infers formats and
// languages from file paths.
type Registry struct {
	byTag map[string]Format
	byExt map[string]Format
}

// NewRegistry returns a registry with every built-in format registered.
func NewRegistry() *Registry {
	r := &Registry{
		byTag: make(map[string]Format),
		byExt: make(map[string]Format),
	}
	r.Register(Strings{})
	r.Register(Android{})
	r.Register(XCStrings{})
	r.Register(CSV{})
	r.Register(TSV{})
	r.Register(XLIFF{})
	r.Register(Catalog{})
	return r
}

// Register adds a format. Later registrations win on tag and extension
// collisions so callers can override built-ins.
func (r *Registry) Register(f Format) {
	r.byTag[f.Tag()] = f
	for _, ext := range f.Extensions() {
		r.byExt[ext] = f
	}
}

// Tags returns the registered tags, sorted.
func (r *Registry) Tags() []string {
	out := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// ByTag returns the format registered under the tag.
func (r *Registry) ByTag(tag string) (Format, error) {
	f, ok := r.byTag[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return nil, fmt.Errorf("format: unknown format %q (known: %s)",
			tag, strings.Join(r.Tags(), ", "))
	}
	return f, nil
}

// ByPath infers the format from a file path by extension.
func (r *Registry) ByPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := r.byExt[ext]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("format: cannot infer format from %q", path)
}

// InferLanguage guesses the language of a file from platform path
// conventions: "de.lproj/Localizable.strings", "values-fr/strings.xml" and
// the "domain.fr.xliff" naming scheme. Returns "" when nothing matches.
func InferLanguage(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if lang, ok := strings.CutSuffix(dir, ".lproj"); ok && lang != "" {
		return lang
	}
	if lang, ok := strings.CutPrefix(dir, "values-"); ok && lang != "" {
		return lang
	}

	base := filepath.Base(path)
	parts := strings.Split(base, ".")
	if len(parts) == 3 {
		return parts[1]
	}
	return ""
}

// singleLanguage narrows a resource to one language for formats that can
// only express one. With opts.Language set, that language is selected. A
// resource that already holds a single language passes through. Anything
// else is an error in strict mode; in permissive mode the first language in
// sort order is chosen with a warning.
func singleLanguage(tag string, res catalog.Resource, opts Options) (string, []catalog.Entry, error) {
	langs := res.Languages()
	lang := opts.Language
	switch {
	case lang != "":
	case len(langs) <= 1:
		if len(langs) == 1 {
			lang = langs[0]
		}
	case opts.Strict:
		return "", nil, &WriteError{
			Format: tag,
			Reason: fmt.Sprintf("resource holds %d languages, pass a language to select one", len(langs)),
		}
	default:
		lang = langs[0]
		opts.warnf("%s: resource holds %d languages, writing %q only", tag, len(langs), lang)
	}

	var entries []catalog.Entry
	for _, e := range res.Entries {
		if lang == "" || e.Language == lang {
			entries = append(entries, e)
		}
	}
	return lang, entries, nil
}

// flatten reduces a translation to a single string for singular-only
// formats. Plural values are a strict-mode write error; permissive mode
// takes the first populated category and warns about the loss.
func flatten(tag, key string, t catalog.Translation, opts Options) (string, error) {
	if !t.IsPlural() {
		return t.Single(), nil
	}
	if opts.Strict {
		return "", &WriteError{
			Format: tag,
			Reason: fmt.Sprintf("key %q holds plural forms the format cannot express", key),
		}
	}
	opts.warnf("%s: key %q: collapsing plural forms to a single value", tag, key)
	return t.Single(), nil
}

// statusFor is the default status assignment for formats that do not track
// translation state: empty values are new, everything else translated.
func statusFor(value string) catalog.Status {
	if value == "" {
		return catalog.New
	}
	return catalog.Translated
}
