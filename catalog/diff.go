package catalog

import "sort"

// Change records an entry present in both resources whose value or status
// differs. Before is the source side, After the target side.
type Change struct {
	Key    string      `json:"key"`
	Before Translation `json:"before"`
	After  Translation `json:"after"`
}

// LanguageDiff is the difference between two resources for one language.
// Added keys exist only in the target, Removed only in the source.
type LanguageDiff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []Change `json:"changed"`
}

// Empty reports whether the language has no differences.
func (d LanguageDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffReport maps each language occurring in either resource to its
// differences. Languages with no differences are omitted.
type DiffReport map[string]LanguageDiff

// Empty reports whether the two resources were identical.
func (r DiffReport) Empty() bool { return len(r) == 0 }

// Diff compares two resources grouped by language. All lists are sorted by
// key so output is deterministic regardless of entry order in the inputs.
func Diff(source, target Resource) DiffReport {
	srcIdx := source.index()
	tgtIdx := target.index()

	report := make(DiffReport)
	get := func(lang string) LanguageDiff { return report[lang] }

	for _, e := range target.Entries {
		if _, ok := srcIdx[e.ID()]; !ok {
			d := get(e.Language)
			d.Added = append(d.Added, e.Key)
			report[e.Language] = d
		}
	}
	for _, e := range source.Entries {
		pos, ok := tgtIdx[e.ID()]
		if !ok {
			d := get(e.Language)
			d.Removed = append(d.Removed, e.Key)
			report[e.Language] = d
			continue
		}
		other := target.Entries[pos]
		if !e.Value.Equal(other.Value) || e.Status != other.Status {
			d := get(e.Language)
			d.Changed = append(d.Changed, Change{Key: e.Key, Before: e.Value, After: other.Value})
			report[e.Language] = d
		}
	}

	for lang, d := range report {
		sort.Strings(d.Added)
		sort.Strings(d.Removed)
		sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Key < d.Changed[j].Key })
		report[lang] = d
	}
	return report
}
