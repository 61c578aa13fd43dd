package format

import (
	"encoding/json"
	"fmt"

	"github.com/WendellXY/langcodec/catalog"
)

// Catalog reads and writes the toolkit's own JSON cache: a JSON array of
// resources in the catalog model's native encoding. It loses nothing, so
// it serves as the interchange format between commands and as debug output.
type Catalog struct{}

func (Catalog) Tag() string          { return "catalog" }
func (Catalog) Extensions() []string { return []string{".json"} }

func (f Catalog) Parse(data []byte, opts Options) (catalog.Resource, error) {
	var resources []catalog.Resource
	if err := json.Unmarshal(data, &resources); err != nil {
		// A single bare resource object is accepted too.
		var single catalog.Resource
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
		}
		resources = []catalog.Resource{single}
	}

	if len(resources) == 1 {
		// Re-check the uniqueness invariant; the file may be hand-edited.
		return catalog.NewResource(resources[0].Metadata, resources[0].Entries)
	}

	var out catalog.Resource
	for _, r := range resources {
		for _, k := range r.Metadata.Keys() {
			if _, ok := out.Metadata.Get(k); !ok {
				v, _ := r.Metadata.Get(k)
				out.Metadata.Set(k, v)
			}
		}
		for _, e := range r.Entries {
			if err := out.Append(e); err != nil {
				return catalog.Resource{}, &ParseError{Format: f.Tag(), Err: err}
			}
		}
	}
	return out, nil
}

func (f Catalog) Serialize(res catalog.Resource, opts Options) ([]byte, error) {
	data, err := json.MarshalIndent([]catalog.Resource{res}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return append(data, '\n'), nil
}
