package format

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/WendellXY/langcodec/catalog"
)

const xcstringsSample = `{
  "sourceLanguage": "en",
  "version": "1.0",
  "strings": {
    "welcome": {
      "comment": "Landing page greeting",
      "extractionState": "manual",
      "localizations": {
        "en": {"stringUnit": {"state": "translated", "value": "Welcome"}},
        "de": {"stringUnit": {"state": "needs_review", "value": "Willkommen"}}
      }
    },
    "items": {
      "localizations": {
        "en": {
          "variations": {
            "plural": {
              "one": {"stringUnit": {"state": "translated", "value": "%d item"}},
              "other": {"stringUnit": {"state": "translated", "value": "%d items"}}
            }
          }
        }
      }
    },
    "brand": {
      "shouldTranslate": false,
      "localizations": {
        "en": {"stringUnit": {"state": "translated", "value": "ACME"}}
      }
    },
    "pending": {}
  }
}`

func TestXCStringsParse(t *testing.T) {
	res, err := XCStrings{}.Parse([]byte(xcstringsSample), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if lang, _ := res.Metadata.Get("source_language"); lang != "en" {
		t.Errorf("source_language = %q", lang)
	}

	welcome, ok := res.Find("welcome", "de")
	if !ok {
		t.Fatal("welcome/de missing")
	}
	if welcome.Status != catalog.NeedsReview {
		t.Errorf("status = %v, want needs_review", welcome.Status)
	}
	if welcome.Comment != "Landing page greeting" {
		t.Errorf("comment = %q", welcome.Comment)
	}
	if state, _ := welcome.Custom.Get("extraction_state"); state != "manual" {
		t.Errorf("extraction_state = %q", state)
	}

	items, ok := res.Find("items", "en")
	if !ok {
		t.Fatal("items/en missing")
	}
	want := map[catalog.Category]string{catalog.One: "%d item", catalog.Other: "%d items"}
	if diff := cmp.Diff(want, items.Value.Forms()); diff != "" {
		t.Errorf("plural forms (-want +got):\n%s", diff)
	}

	brand, _ := res.Find("brand", "en")
	if brand.Status != catalog.DoNotTranslate {
		t.Errorf("shouldTranslate=false must map to do_not_translate, got %v", brand.Status)
	}

	// Keys without localizations stay visible under the source language.
	if _, ok := res.Find("pending", "en"); !ok {
		t.Error("key without localizations was dropped")
	}
}

func TestXCStringsRoundTrip(t *testing.T) {
	res, err := XCStrings{}.Parse([]byte(xcstringsSample), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, err := XCStrings{}.Serialize(res, Options{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	back, err := XCStrings{}.Parse(data, Options{})
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	for _, e := range res.Entries {
		got, ok := back.Find(e.Key, e.Language)
		if !ok {
			t.Errorf("%s/%s lost in round trip", e.Key, e.Language)
			continue
		}
		if !got.Value.Equal(e.Value) || got.Status != e.Status {
			t.Errorf("%s/%s changed: %+v vs %+v", e.Key, e.Language, got, e)
		}
	}
}

func TestXCStringsSerializeMultiLanguage(t *testing.T) {
	res, err := catalog.NewResource(catalog.Meta{}, []catalog.Entry{
		{Key: "hi", Language: "en", Value: catalog.Singular("Hi"), Status: catalog.Translated},
		{Key: "hi", Language: "ja", Value: catalog.Singular("やあ"), Status: catalog.Translated},
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := XCStrings{}.Serialize(res, Options{SourceLanguage: "en"})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	back, err := XCStrings{}.Parse(data, Options{})
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(back.Entries) != 2 {
		t.Errorf("entries = %d, want both languages", len(back.Entries))
	}
}
