/*
Package importer walks the configured import directory and loads every
recognizable localization file into the datastore. Files are grouped into
domains by their base name; per-file failures are collected so one broken
file never aborts the whole run.
*/
package importer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/WendellXY/langcodec/catalog"
	"github.com/WendellXY/langcodec/config"
	"github.com/WendellXY/langcodec/datastore"
	"github.com/WendellXY/langcodec/format"
)

// Result describes the outcome for one imported file.
type Result struct {
	Path    string
	Domain  string
	Entries int
	Err     error
}

// BatchError is returned when some files of a batch import failed. The
// successful files stay imported.
type BatchError struct {
	Failures []Result
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("importer: %d of the imported files failed", len(e.Failures))
}

// domainFor derives the storage domain from a file path: the first dot
// separated part of the base name, unless that is a platform resource name
// like strings.xml or Localizable.strings, in which case the configured
// default applies.
func domainFor(path, defaultDomain string) string {
	base := filepath.Base(path)
	name := strings.SplitN(base, ".", 2)[0]
	switch strings.ToLower(name) {
	case "", "strings", "localizable":
		return defaultDomain
	default:
		return name
	}
}

// normalizeKeys rewrites every key of the resource to snake_case. Keys that
// collide after rewriting keep their first value and report an error.
func normalizeKeys(res catalog.Resource) (catalog.Resource, error) {
	var out catalog.Resource
	out.Metadata = res.Metadata.Clone()
	for _, e := range res.Entries {
		e.Key = strcase.ToSnake(e.Key)
		if err := out.Append(e); err != nil {
			return catalog.Resource{}, err
		}
	}
	return out, nil
}

// ImportDir parses every file under dir that the registry recognizes and
// stores it. The returned results hold one element per file, failed or not.
func ImportDir(ds *datastore.DataStore, reg *format.Registry, dir string, c config.ImportConfig) ([]Result, error) {
	var results []Result

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, err := reg.ByPath(path); err != nil {
			// Not a localization file; skip silently.
			return nil
		}

		result := Result{Path: path, Domain: domainFor(path, c.DefaultDomain)}
		res, err := reg.ParseFile(path, "", format.Options{})
		if err == nil && c.NormalizeKeys {
			res, err = normalizeKeys(res)
		}
		if err == nil {
			if domain, ok := res.Metadata.Get("Domain"); ok {
				result.Domain = domain
			}
			err = ds.ImportResource(result.Domain, res)
		}
		result.Entries = len(res.Entries)
		result.Err = err
		results = append(results, result)
		return nil
	})
	if err != nil {
		return results, err
	}

	var failures []Result
	for _, r := range results {
		if r.Err != nil {
			failures = append(failures, r)
		}
	}
	if len(failures) > 0 {
		return results, &BatchError{Failures: failures}
	}
	return results, nil
}

// Import is the 'import' command: connects to the configured database and
// imports the configured import path.
func Import(c config.Config) error {
	start := time.Now()

	db, err := sqlx.Connect(c.DB.Driver, c.DB.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()
	ds, err := datastore.New(db, c.DB.Driver)
	if err != nil {
		return err
	}

	results, err := ImportDir(ds, format.NewRegistry(), c.Import.ImportPath, c.Import)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("Failed:   %v: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Printf("Imported: %v (%v entries into domain '%v')\n", r.Path, r.Entries, r.Domain)
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start).Seconds()
	fmt.Printf("Imported %v files in %fs\n", len(results), elapsed)

	return nil
}
