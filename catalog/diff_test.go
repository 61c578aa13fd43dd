package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiffAddedRemovedChanged(t *testing.T) {
	source := mustResource(t,
		singular("keep", "en", "same"),
		singular("gone", "en", "removed value"),
		singular("title", "en", "Old title"),
		singular("keep", "fr", "pareil"),
	)
	target := mustResource(t,
		singular("keep", "en", "same"),
		singular("title", "en", "New title"),
		singular("fresh", "en", "added value"),
		singular("keep", "fr", "pareil"),
	)

	got := Diff(source, target)
	want := DiffReport{
		"en": {
			Added:   []string{"fresh"},
			Removed: []string{"gone"},
			Changed: []Change{{Key: "title", Before: Singular("Old title"), After: Singular("New title")}},
		},
	}
	if diff := cmp.Diff(want, got, cmpOpts...); diff != "" {
		t.Errorf("diff report (-want +got):\n%s", diff)
	}
}

func TestDiffAntiSymmetry(t *testing.T) {
	a := mustResource(t,
		singular("only_a", "en", "a"),
		singular("shared", "en", "one"),
	)
	b := mustResource(t,
		singular("only_b", "en", "b"),
		singular("shared", "en", "two"),
	)

	ab := Diff(a, b)["en"]
	ba := Diff(b, a)["en"]

	if diff := cmp.Diff(ab.Added, ba.Removed); diff != "" {
		t.Errorf("Added(a,b) != Removed(b,a):\n%s", diff)
	}
	if diff := cmp.Diff(ab.Removed, ba.Added); diff != "" {
		t.Errorf("Removed(a,b) != Added(b,a):\n%s", diff)
	}
	if len(ab.Changed) != len(ba.Changed) {
		t.Fatalf("changed counts differ: %d vs %d", len(ab.Changed), len(ba.Changed))
	}
	for i, c := range ab.Changed {
		r := ba.Changed[i]
		if c.Key != r.Key || !c.Before.Equal(r.After) || !c.After.Equal(r.Before) {
			t.Errorf("changed[%d] not mirrored: %+v vs %+v", i, c, r)
		}
	}
}

func TestDiffStatusOnlyChange(t *testing.T) {
	src := mustResource(t, Entry{Key: "title", Language: "en", Value: Singular("x"), Status: NeedsReview})
	tgt := mustResource(t, Entry{Key: "title", Language: "en", Value: Singular("x"), Status: Translated})

	got := Diff(src, tgt)
	if len(got["en"].Changed) != 1 {
		t.Fatalf("status-only difference not reported: %+v", got)
	}
}

func TestDiffPluralCategorySetChange(t *testing.T) {
	src := mustResource(t, Entry{
		Key: "items", Language: "pl", Status: Translated,
		Value: Plural(map[Category]string{One: "1", Other: "n"}),
	})
	tgt := mustResource(t, Entry{
		Key: "items", Language: "pl", Status: Translated,
		Value: Plural(map[Category]string{One: "1", Few: "2-4", Many: "5+", Other: "n"}),
	})

	got := Diff(src, tgt)
	if len(got["pl"].Changed) != 1 {
		t.Fatalf("plural category-set difference not reported: %+v", got)
	}
}

func TestDiffIdenticalResourcesIsEmpty(t *testing.T) {
	r := mustResource(t, singular("a", "en", "x"), singular("b", "fr", "y"))
	if got := Diff(r, r); !got.Empty() {
		t.Errorf("diff of resource with itself: %+v", got)
	}
}

func TestDiffSortsByKey(t *testing.T) {
	source := mustResource(t)
	target := mustResource(t,
		singular("zebra", "en", "z"),
		singular("apple", "en", "a"),
		singular("mango", "en", "m"),
	)
	got := Diff(source, target)["en"].Added
	if diff := cmp.Diff([]string{"apple", "mango", "zebra"}, got); diff != "" {
		t.Errorf("added list not sorted (-want +got):\n%s", diff)
	}
}
