package format

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/WendellXY/langcodec/catalog"
)

func TestRegistryByPath(t *testing.T) {
	reg := NewRegistry()
	tests := []struct {
		path string
		tag  string
	}{
		{"res/values-de/strings.xml", "android"},
		{"de.lproj/Localizable.strings", "strings"},
		{"Localizable.xcstrings", "xcstrings"},
		{"export.csv", "csv"},
		{"export.tsv", "tsv"},
		{"app.de.xliff", "xliff"},
		{"app.de.xlf", "xliff"},
		{"cache.json", "catalog"},
	}
	for _, tt := range tests {
		f, err := reg.ByPath(tt.path)
		if err != nil {
			t.Errorf("ByPath(%q): %v", tt.path, err)
			continue
		}
		if f.Tag() != tt.tag {
			t.Errorf("ByPath(%q) = %s, want %s", tt.path, f.Tag(), tt.tag)
		}
	}

	if _, err := reg.ByPath("README.md"); err == nil {
		t.Error("expected error for unknown extension")
	}
	if _, err := reg.ByTag("gettext"); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestInferLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"ios/de.lproj/Localizable.strings", "de"},
		{"res/values-fr/strings.xml", "fr"},
		{"res/values/strings.xml", ""},
		{"translations/app.pt-BR.xliff", "pt-BR"},
		{"plain.csv", ""},
	}
	for _, tt := range tests {
		if got := InferLanguage(tt.path); got != tt.want {
			t.Errorf("InferLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseFileInfersLanguage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "values-nl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "strings.xml")
	content := `<resources><string name="hi">Hoi</string></resources>`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	res, err := reg.ParseFile(path, "", Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if _, ok := res.Find("hi", "nl"); !ok {
		t.Errorf("language not inferred from values-nl: %+v", res.Entries)
	}
}

func TestWriteFileAndReadBack(t *testing.T) {
	res, err := catalog.NewResource(catalog.Meta{}, []catalog.Entry{
		{Key: "hi", Language: "en", Value: catalog.Singular("Hi"), Status: catalog.Translated},
		{
			Key: "files", Language: "en", Status: catalog.Translated,
			Value: catalog.Plural(map[catalog.Category]string{catalog.One: "%d file", catalog.Other: "%d files"}),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := reg.WriteFile(path, "", res, Options{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := reg.ParseFile(path, "", Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if len(back.Entries) != len(res.Entries) {
		t.Fatalf("entries = %d, want %d", len(back.Entries), len(res.Entries))
	}
	for i, e := range res.Entries {
		got := back.Entries[i]
		if got.Key != e.Key || !got.Value.Equal(e.Value) || got.Status != e.Status {
			t.Errorf("entry %d changed: %+v vs %+v", i, got, e)
		}
	}
}

func TestCatalogParseMergesArrayElements(t *testing.T) {
	input := `[
  {"metadata": {"language": "en"}, "entries": [
    {"key": "hi", "language": "en", "value": {"singular": "Hi"}, "status": "translated"}
  ]},
  {"metadata": {"language": "de"}, "entries": [
    {"key": "hi", "language": "de", "value": {"singular": "Hallo"}, "status": "translated"}
  ]}
]`
	res, err := Catalog{}.Parse([]byte(input), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]string{"de", "en"}, res.Languages()); diff != "" {
		t.Errorf("languages (-want +got):\n%s", diff)
	}
	if lang, _ := res.Metadata.Get("language"); lang != "en" {
		t.Errorf("first-seen metadata must win, got %q", lang)
	}
}

func TestCatalogParseRejectsDuplicateAcrossElements(t *testing.T) {
	input := `[
  {"metadata": {}, "entries": [{"key": "hi", "language": "en", "value": {"singular": "a"}, "status": "new"}]},
  {"metadata": {}, "entries": [{"key": "hi", "language": "en", "value": {"singular": "b"}, "status": "new"}]}
]`
	if _, err := (Catalog{}).Parse([]byte(input), Options{}); err == nil {
		t.Error("expected duplicate (key, language) error")
	}
}
