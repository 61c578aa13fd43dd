package catalog

import "sort"

// LanguageStats summarizes completion for one language.
type LanguageStats struct {
	Language   string         `json:"language"`
	Total      int            `json:"total"`
	ByStatus   map[Status]int `json:"by_status"`
	Completion float64        `json:"completion_percent"`
}

// Stats computes per-language entry counts, per-status counts and a
// completion percentage. Completion is translated entries over translatable
// entries; DoNotTranslate entries are excluded from the denominator, and a
// language with nothing translatable counts as fully complete.
func Stats(r Resource) []LanguageStats {
	byLang := make(map[string]*LanguageStats)
	for _, e := range r.Entries {
		s, ok := byLang[e.Language]
		if !ok {
			s = &LanguageStats{Language: e.Language, ByStatus: make(map[Status]int)}
			byLang[e.Language] = s
		}
		s.Total++
		s.ByStatus[e.Status]++
	}

	out := make([]LanguageStats, 0, len(byLang))
	for _, s := range byLang {
		translatable := s.Total - s.ByStatus[DoNotTranslate]
		if translatable == 0 {
			s.Completion = 100
		} else {
			s.Completion = float64(s.ByStatus[Translated]) / float64(translatable) * 100
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}
