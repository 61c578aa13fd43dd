package catalog

import (
	"fmt"
	"sort"
)

// SyncPolicy controls whether sync failures are fatal. It never changes
// which entries get updated, only whether leftover unmatched or ambiguous
// entries abort the operation.
type SyncPolicy struct {
	FailOnUnmatched bool
	FailOnAmbiguous bool
}

// LanguageSync summarizes the sync outcome for one target language.
type LanguageSync struct {
	Matched   int      `json:"matched"`
	Unmatched []string `json:"unmatched"`
	Ambiguous []string `json:"ambiguous"`
}

// SyncReport maps each target language to its sync outcome.
type SyncReport map[string]LanguageSync

// TotalUnmatched returns the number of unmatched keys across languages.
func (r SyncReport) TotalUnmatched() (n int) {
	for _, l := range r {
		n += len(l.Unmatched)
	}
	return
}

// TotalAmbiguous returns the number of ambiguous keys across languages.
func (r SyncReport) TotalAmbiguous() (n int) {
	for _, l := range r {
		n += len(l.Ambiguous)
	}
	return
}

// SyncPolicyError is returned when a SyncPolicy marks leftover unmatched or
// ambiguous entries as fatal.
type SyncPolicyError struct {
	Unmatched int
	Ambiguous int
}

func (e *SyncPolicyError) Error() string {
	return fmt.Sprintf("catalog: sync left %d unmatched and %d ambiguous entries",
		e.Unmatched, e.Ambiguous)
}

// Sync updates the values of target entries from the source resource. The
// target's key set, entry order, statuses and comments are never changed;
// only values are adopted.
//
// For each target entry the source is consulted twice. First an exact
// (key, language) lookup. If that misses, the target entry's sibling
// translation in matchLang is used as a search token: source keys whose
// matchLang value equals the token and that carry a value for the target's
// language are candidates. Exactly one candidate means its value is adopted
// under the target's own key. Zero candidates leaves the entry unmatched,
// more than one leaves it ambiguous; both stay untouched.
func Sync(source, target Resource, matchLang string, policy SyncPolicy) (Resource, SyncReport, error) {
	srcIdx := source.index()

	// matchLang value -> source keys carrying that value, for the fallback.
	byToken := make(map[string][]string)
	for _, e := range source.Entries {
		if e.Language != matchLang || e.Value.IsPlural() {
			continue
		}
		byToken[e.Value.Single()] = append(byToken[e.Value.Single()], e.Key)
	}

	tgtMatchIdx := make(map[string]int)
	for i, e := range target.Entries {
		if e.Language == matchLang {
			tgtMatchIdx[e.Key] = i
		}
	}

	out := target.Clone()
	report := make(SyncReport)
	record := func(lang string, update func(*LanguageSync)) {
		l := report[lang]
		update(&l)
		report[lang] = l
	}

	for i, e := range out.Entries {
		if pos, ok := srcIdx[e.ID()]; ok {
			out.Entries[i].Value = source.Entries[pos].Value
			record(e.Language, func(l *LanguageSync) { l.Matched++ })
			continue
		}

		var token string
		var haveToken bool
		if pos, ok := tgtMatchIdx[e.Key]; ok {
			sibling := target.Entries[pos]
			if !sibling.Value.IsPlural() {
				token = sibling.Value.Single()
				haveToken = true
			}
		}
		if !haveToken {
			record(e.Language, func(l *LanguageSync) { l.Unmatched = append(l.Unmatched, e.Key) })
			continue
		}

		var candidates []ID
		for _, key := range byToken[token] {
			id := ID{Key: key, Language: e.Language}
			if _, ok := srcIdx[id]; ok {
				candidates = append(candidates, id)
			}
		}
		switch len(candidates) {
		case 1:
			out.Entries[i].Value = source.Entries[srcIdx[candidates[0]]].Value
			record(e.Language, func(l *LanguageSync) { l.Matched++ })
		case 0:
			record(e.Language, func(l *LanguageSync) { l.Unmatched = append(l.Unmatched, e.Key) })
		default:
			record(e.Language, func(l *LanguageSync) { l.Ambiguous = append(l.Ambiguous, e.Key) })
		}
	}

	for lang, l := range report {
		sort.Strings(l.Unmatched)
		sort.Strings(l.Ambiguous)
		report[lang] = l
	}

	if policy.FailOnAmbiguous && report.TotalAmbiguous() > 0 ||
		policy.FailOnUnmatched && report.TotalUnmatched() > 0 {
		return Resource{}, report, &SyncPolicyError{
			Unmatched: report.TotalUnmatched(),
			Ambiguous: report.TotalAmbiguous(),
		}
	}
	return out, report, nil
}
