package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatsCompletion(t *testing.T) {
	r := mustResource(t,
		Entry{Key: "a", Language: "de", Value: Singular("x"), Status: Translated},
		Entry{Key: "b", Language: "de", Value: Singular("y"), Status: Translated},
		Entry{Key: "c", Language: "de", Value: Singular(""), Status: New},
		Entry{Key: "d", Language: "de", Value: Singular("brand"), Status: DoNotTranslate},
		Entry{Key: "a", Language: "fr", Value: Singular("z"), Status: NeedsReview},
	)

	got := Stats(r)
	want := []LanguageStats{
		{
			Language: "de",
			Total:    4,
			ByStatus: map[Status]int{Translated: 2, New: 1, DoNotTranslate: 1},
			// 2 translated of 3 translatable (DoNotTranslate excluded),
			// written the way Stats computes it so the floats are identical.
			Completion: float64(2) / float64(3) * 100,
		},
		{
			Language:   "fr",
			Total:      1,
			ByStatus:   map[Status]int{NeedsReview: 1},
			Completion: 0,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}

func TestStatsAllDoNotTranslateIsComplete(t *testing.T) {
	r := mustResource(t,
		Entry{Key: "brand", Language: "ja", Value: Singular("ACME"), Status: DoNotTranslate},
	)
	got := Stats(r)
	if len(got) != 1 || got[0].Completion != 100 {
		t.Errorf("stats = %+v, want 100%% completion", got)
	}
}
