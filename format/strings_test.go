package format

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/WendellXY/langcodec/catalog"
)

func TestStringsParse(t *testing.T) {
	input := `//: Language: de
//: Domain: app

// Shown on the landing page
"welcome" = "Willkommen";
/* multi word comment */
"farewell" = "Auf Wiedersehen";
"empty" = "";
"escaped" = "Zeile 1\nZeile \"zwei\"";
`
	res, err := Strings{}.Parse([]byte(input), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if lang, _ := res.Metadata.Get("Language"); lang != "de" {
		t.Errorf("Language metadata = %q, want de", lang)
	}
	if domain, _ := res.Metadata.Get("Domain"); domain != "app" {
		t.Errorf("Domain metadata = %q, want app", domain)
	}

	welcome, ok := res.Find("welcome", "de")
	if !ok {
		t.Fatal("welcome entry missing")
	}
	if welcome.Comment != "Shown on the landing page" {
		t.Errorf("comment = %q", welcome.Comment)
	}
	if welcome.Status != catalog.Translated {
		t.Errorf("status = %v, want translated", welcome.Status)
	}

	if empty, _ := res.Find("empty", "de"); empty.Status != catalog.New {
		t.Errorf("empty value status = %v, want new", empty.Status)
	}
	if escaped, _ := res.Find("escaped", "de"); escaped.Value.Single() != "Zeile 1\nZeile \"zwei\"" {
		t.Errorf("escapes not decoded: %q", escaped.Value.Single())
	}
}

func TestStringsParseFoldsMultilineValues(t *testing.T) {
	input := "\"long\" = \"first line\nsecond line\";\n"
	res, err := Strings{}.Parse([]byte(input), Options{Language: "en"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e, ok := res.Find("long", "en")
	if !ok {
		t.Fatal("entry missing")
	}
	if e.Value.Single() != "first line\nsecond line" {
		t.Errorf("folded value = %q", e.Value.Single())
	}
}

func TestStringsRoundTrip(t *testing.T) {
	res, err := catalog.NewResource(catalog.Meta{}, []catalog.Entry{
		{Key: "hello", Language: "fr", Value: catalog.Singular("Bonjour"), Status: catalog.Translated, Comment: "greeting"},
		{Key: "bye", Language: "fr", Value: catalog.Singular("Au revoir"), Status: catalog.Translated},
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := Strings{}.Serialize(res, Options{Language: "fr"})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	back, err := Strings{}.Parse(data, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var keys []string
	for _, e := range back.Entries {
		keys = append(keys, e.Key)
	}
	if diff := cmp.Diff([]string{"hello", "bye"}, keys); diff != "" {
		t.Errorf("entry order (-want +got):\n%s", diff)
	}
	hello, _ := back.Find("hello", "fr")
	if hello.Value.Single() != "Bonjour" || hello.Comment != "greeting" {
		t.Errorf("round trip lost data: %+v", hello)
	}
}

func TestStringsPluralHandling(t *testing.T) {
	res, err := catalog.NewResource(catalog.Meta{}, []catalog.Entry{
		{
			Key: "items", Language: "en", Status: catalog.Translated,
			Value: catalog.Plural(map[catalog.Category]string{catalog.One: "%d item", catalog.Other: "%d items"}),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := (Strings{}).Serialize(res, Options{Strict: true, Language: "en"}); err == nil {
		t.Error("strict mode must refuse plural values")
	}

	var warned []string
	data, err := Strings{}.Serialize(res, Options{
		Language: "en",
		Warn:     func(msg string) { warned = append(warned, msg) },
	})
	if err != nil {
		t.Fatalf("permissive Serialize: %v", err)
	}
	if !strings.Contains(string(data), "%d item") {
		t.Errorf("flattened output missing first form: %s", data)
	}
	if len(warned) == 0 {
		t.Error("lossy flattening must warn")
	}
}

func TestStringsMultiLanguageSelection(t *testing.T) {
	res, err := catalog.NewResource(catalog.Meta{}, []catalog.Entry{
		{Key: "a", Language: "en", Value: catalog.Singular("A"), Status: catalog.Translated},
		{Key: "a", Language: "fr", Value: catalog.Singular("Un"), Status: catalog.Translated},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := (Strings{}).Serialize(res, Options{Strict: true}); err == nil {
		t.Error("strict mode must refuse an ambiguous multi-language resource")
	}

	data, err := Strings{}.Serialize(res, Options{Language: "fr"})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(data), "Un") || strings.Contains(string(data), `"A"`) {
		t.Errorf("language filter failed: %s", data)
	}
}
