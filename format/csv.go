package format

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/WendellXY/langcodec/catalog"
)

// CSV reads and writes two-column key,value tables. The table never names
// its language; callers pass it through Options.Language. Singular only.
type CSV struct{}

func (CSV) Tag() string          { return "csv" }
func (CSV) Extensions() []string { return []string{".csv"} }

func (f CSV) Parse(data []byte, opts Options) (catalog.Resource, error) {
	return parseTable(f.Tag(), ',', data, opts)
}

func (f CSV) Serialize(res catalog.Resource, opts Options) ([]byte, error) {
	return serializeTable(f.Tag(), ',', res, opts)
}

// TSV is CSV with a tab delimiter.
type TSV struct{}

func (TSV) Tag() string          { return "tsv" }
func (TSV) Extensions() []string { return []string{".tsv"} }

func (f TSV) Parse(data []byte, opts Options) (catalog.Resource, error) {
	return parseTable(f.Tag(), '\t', data, opts)
}

func (f TSV) Serialize(res catalog.Resource, opts Options) ([]byte, error) {
	return serializeTable(f.Tag(), '\t', res, opts)
}

func parseTable(tag string, delim rune, data []byte, opts Options) (catalog.Resource, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1

	var res catalog.Resource
	if opts.Language != "" {
		res.Metadata.Set("language", opts.Language)
	}

	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return catalog.Resource{}, &ParseError{Format: tag, Line: line, Err: err}
		}
		if len(record) < 2 {
			if opts.Strict {
				return catalog.Resource{}, &ParseError{
					Format: tag, Line: line,
					Err: fmt.Errorf("expected key and value columns, got %d column(s)", len(record)),
				}
			}
			opts.warnf("%s: line %d: expected key and value columns, skipping", tag, line)
			continue
		}
		entry := catalog.Entry{
			Key:      record[0],
			Language: opts.Language,
			Value:    catalog.Singular(record[1]),
			Status:   statusFor(record[1]),
		}
		if err := res.Append(entry); err != nil {
			if opts.Strict {
				return catalog.Resource{}, &ParseError{Format: tag, Line: line, Err: err}
			}
			opts.warnf("%s: line %d: %v, keeping first occurrence", tag, line, err)
		}
	}
	return res, nil
}

func serializeTable(tag string, delim rune, res catalog.Resource, opts Options) ([]byte, error) {
	_, entries, err := singleLanguage(tag, res, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = delim
	for _, e := range entries {
		value, err := flatten(tag, e.Key, e.Value, opts)
		if err != nil {
			return nil, err
		}
		if err := writer.Write([]string{e.Key, value}); err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", tag, err)
	}
	return buf.Bytes(), nil
}
