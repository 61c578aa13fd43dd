package format

import (
	"fmt"
	"os"

	"github.com/WendellXY/langcodec/catalog"
)

// ParseFile reads and parses one file, inferring the format from the path
// unless tag is non-empty. A missing opts.Language falls back to path
// inference so platform layouts like de.lproj and values-fr work without
// flags.
func (r *Registry) ParseFile(path, tag string, opts Options) (catalog.Resource, error) {
	f, err := r.resolve(path, tag)
	if err != nil {
		return catalog.Resource{}, err
	}
	if opts.Language == "" {
		opts.Language = InferLanguage(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Resource{}, fmt.Errorf("format: reading %s: %w", path, err)
	}
	res, err := f.Parse(data, opts)
	if err != nil {
		return catalog.Resource{}, fmt.Errorf("format: parsing %s: %w", path, err)
	}
	return res, nil
}

// WriteFile serializes a resource and writes it to path, inferring the
// format from the path unless tag is non-empty.
func (r *Registry) WriteFile(path, tag string, res catalog.Resource, opts Options) error {
	f, err := r.resolve(path, tag)
	if err != nil {
		return err
	}
	data, err := f.Serialize(res, opts)
	if err != nil {
		return fmt.Errorf("format: serializing for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("format: writing %s: %w", path, err)
	}
	return nil
}

func (r *Registry) resolve(path, tag string) (Format, error) {
	if tag != "" {
		return r.ByTag(tag)
	}
	return r.ByPath(path)
}
