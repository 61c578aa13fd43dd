package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/WendellXY/langcodec/catalog"
)

// Strings reads and writes Apple .strings files: `"key" = "value";` pairs
// with optional comments. A `//: Key: Value` header line carries file
// metadata; `//: Language: de` is how the format names its language. The
// format is singular-only.
type Strings struct{}

func (Strings) Tag() string          { return "strings" }
func (Strings) Extensions() []string { return []string{".strings"} }

func (f Strings) Parse(data []byte, opts Options) (catalog.Resource, error) {
	content := foldMultilineValues(string(data))

	var res catalog.Resource
	var lastComment string

	for lineNo, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "//:"):
			// Header line: "//: Language: de"
			parts := strings.SplitN(trimmed[3:], ":", 2)
			if len(parts) == 2 {
				res.Metadata.Set(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
			}
			continue
		case trimmed == "":
			lastComment = ""
			continue
		case strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "/*"):
			lastComment = trimmed
			continue
		}

		key, value, err := parseStringsPair(trimmed)
		if err != nil {
			if opts.Strict {
				return catalog.Resource{}, &ParseError{Format: f.Tag(), Line: lineNo + 1, Err: err}
			}
			opts.warnf("strings: line %d: %v", lineNo+1, err)
			continue
		}

		entry := catalog.Entry{
			Key:      key,
			Language: f.language(res, opts),
			Value:    catalog.Singular(value),
			Status:   statusFor(value),
			Comment:  strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(lastComment, "/*"), "//"), "*/")),
		}
		lastComment = ""
		if err := res.Append(entry); err != nil {
			if opts.Strict {
				return catalog.Resource{}, &ParseError{Format: f.Tag(), Line: lineNo + 1, Err: err}
			}
			opts.warnf("strings: line %d: %v, keeping first occurrence", lineNo+1, err)
		}
	}
	return res, nil
}

func (Strings) language(res catalog.Resource, opts Options) string {
	if opts.Language != "" {
		return opts.Language
	}
	lang, _ := res.Metadata.Get("Language")
	return lang
}

func (f Strings) Serialize(res catalog.Resource, opts Options) ([]byte, error) {
	lang, entries, err := singleLanguage(f.Tag(), res, opts)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if lang != "" {
		fmt.Fprintf(&b, "//: Language: %s\n\n", lang)
	}
	for _, e := range entries {
		value, err := flatten(f.Tag(), e.Key, e.Value, opts)
		if err != nil {
			return nil, err
		}
		if e.Comment != "" {
			fmt.Fprintf(&b, "// %s\n", e.Comment)
		}
		fmt.Fprintf(&b, "%q = %q;\n", e.Key, value)
	}
	return []byte(b.String()), nil
}

// parseStringsPair splits one `"key" = "value";` line.
func parseStringsPair(line string) (key, value string, err error) {
	eq := indexUnquoted(line, '=')
	if eq < 0 {
		return "", "", errors.New("expected '\"key\" = \"value\";'")
	}
	key, err = unquoteStrings(strings.TrimSpace(line[:eq]))
	if err != nil {
		return "", "", fmt.Errorf("key: %w", err)
	}
	rhs := strings.TrimSpace(line[eq+1:])
	rhs = strings.TrimSpace(strings.TrimSuffix(rhs, ";"))
	value, err = unquoteStrings(rhs)
	if err != nil {
		return "", "", fmt.Errorf("value for key %q: %w", key, err)
	}
	return key, value, nil
}

// indexUnquoted finds the first occurrence of c outside double quotes.
func indexUnquoted(s string, c byte) int {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && inQuotes:
			i++
		case s[i] == '"':
			inQuotes = !inQuotes
		case s[i] == c && !inQuotes:
			return i
		}
	}
	return -1
}

func unquoteStrings(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("%s is not a quoted string", s)
	}
	s = s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

// foldMultilineValues joins values that span physical lines into one line,
// encoding the line breaks as \n so the line-based parser sees one pair per
// line. Quotes inside values stay untouched when escaped.
func foldMultilineValues(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	inValue := false
	backslashes := 0
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '"' && backslashes%2 == 0:
			inValue = !inValue
			b.WriteByte(c)
		case c == '\n' && inValue:
			b.WriteString(`\n`)
			// Leading indentation of continuation lines is not part of
			// the value.
			for i+1 < len(content) && (content[i+1] == ' ' || content[i+1] == '\t') {
				i++
			}
		default:
			b.WriteByte(c)
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
	}
	return b.String()
}
