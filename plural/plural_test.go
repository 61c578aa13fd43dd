package plural

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/WendellXY/langcodec/catalog"
)

func TestMissingCategories(t *testing.T) {
	rules := DefaultRules()
	otherOnly := catalog.Plural(map[catalog.Category]string{catalog.Other: "%d items"})

	tests := []struct {
		name  string
		lang  string
		value catalog.Translation
		want  []catalog.Category
	}{
		{"english needs one", "en", otherOnly, []catalog.Category{catalog.One}},
		{
			"polish needs few and many",
			"pl",
			catalog.Plural(map[catalog.Category]string{catalog.One: "1", catalog.Other: "n"}),
			[]catalog.Category{catalog.Few, catalog.Many},
		},
		{"japanese satisfied by other", "ja", otherOnly, nil},
		{"unknown locale requires only other", "tlh", otherOnly, nil},
		{
			"arabic requires all six",
			"ar",
			catalog.Plural(map[catalog.Category]string{catalog.Other: "n"}),
			[]catalog.Category{catalog.Zero, catalog.One, catalog.Two, catalog.Few, catalog.Many},
		},
		{"region subtag ignored", "pt-BR", otherOnly, []catalog.Category{catalog.One}},
		{"underscored locale", "zh_Hant", otherOnly, nil},
		{"singular never flagged", "pl", catalog.Singular("x"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Missing(tt.lang, tt.value)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Missing (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateResource(t *testing.T) {
	res, err := catalog.NewResource(catalog.Meta{}, []catalog.Entry{
		{
			Key: "items", Language: "en", Status: catalog.Translated,
			Value: catalog.Plural(map[catalog.Category]string{catalog.Other: "%d items"}),
		},
		{
			Key: "items", Language: "ja", Status: catalog.Translated,
			Value: catalog.Plural(map[catalog.Category]string{catalog.Other: "%d個"}),
		},
		{
			Key: "legal", Language: "en", Status: catalog.DoNotTranslate,
			Value: catalog.Plural(map[catalog.Category]string{catalog.Other: "(c)"}),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	report, err := ValidateResource(res, DefaultRules(), false)
	if err != nil {
		t.Fatalf("permissive validation must not fail: %v", err)
	}
	want := []Finding{
		{Key: "items", Language: "en", Missing: []catalog.Category{catalog.One}},
	}
	if diff := cmp.Diff(want, report.Findings); diff != "" {
		t.Errorf("findings (-want +got):\n%s", diff)
	}

	_, err = ValidateResource(res, DefaultRules(), true)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("strict mode: expected ValidationError, got %v", err)
	}
	if len(verr.Report.Findings) != 1 {
		t.Errorf("strict report findings = %d, want 1", len(verr.Report.Findings))
	}
}

func TestLoadRulesFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "en: [one, two, other]\nxx: [zero, other]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRulesFile(path)
	if err != nil {
		t.Fatalf("LoadRulesFile: %v", err)
	}

	en := rules.Required("en").Slice()
	if diff := cmp.Diff([]catalog.Category{catalog.One, catalog.Two, catalog.Other}, en); diff != "" {
		t.Errorf("overridden en (-want +got):\n%s", diff)
	}
	xx := rules.Required("xx").Slice()
	if diff := cmp.Diff([]catalog.Category{catalog.Zero, catalog.Other}, xx); diff != "" {
		t.Errorf("new xx (-want +got):\n%s", diff)
	}
	// Untouched defaults survive.
	pl := rules.Required("pl").Slice()
	if diff := cmp.Diff([]catalog.Category{catalog.One, catalog.Few, catalog.Many, catalog.Other}, pl); diff != "" {
		t.Errorf("default pl (-want +got):\n%s", diff)
	}
}

func TestLoadRulesFileRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("en: [single]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRulesFile(path); err == nil {
		t.Error("expected error for unknown category name")
	}
}
