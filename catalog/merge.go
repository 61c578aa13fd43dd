package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy selects how Merge resolves two entries with the same (key,
// language) across different inputs.
type Strategy uint8

const (
	// First keeps the earliest occurrence.
	First Strategy = iota
	// Last keeps the latest occurrence.
	Last
	// Fail aborts the merge and reports every conflict.
	Fail
)

var strategyNames = [...]string{"first", "last", "error"}

func (s Strategy) String() string {
	if int(s) >= len(strategyNames) {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy converts a strategy name ("first", "last", "error") to a
// Strategy.
func ParseStrategy(s string) (Strategy, error) {
	for i, name := range strategyNames {
		if strings.EqualFold(s, name) {
			return Strategy(i), nil
		}
	}
	return First, fmt.Errorf("catalog: unknown merge strategy %q", s)
}

// Conflict is one (key, language) that occurs in more than one input with
// differing values. Values holds every competing translation in input order.
type Conflict struct {
	Key      string        `json:"key"`
	Language string        `json:"language"`
	Values   []Translation `json:"values"`
}

// MergeConflict is returned by Merge under the Fail strategy. It lists all
// conflicts found, not just the first.
type MergeConflict struct {
	Conflicts []Conflict
}

func (e *MergeConflict) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s/%s", c.Key, c.Language))
	}
	return fmt.Sprintf("catalog: merge conflicts on %d entries: %s",
		len(e.Conflicts), strings.Join(parts, ", "))
}

// Merge combines resources into one. The output contains the union of all
// (key, language) pairs, ordered by first appearance across the inputs.
// Entries sharing an identity with equal values merge silently; differing
// values are resolved by the strategy. Under Fail no partial result is
// returned. Metadata merges with the first-seen value winning per key.
func Merge(resources []Resource, strategy Strategy) (Resource, error) {
	var out Resource
	positions := make(map[ID]int)
	conflicted := make(map[ID]*Conflict)
	var conflictOrder []ID

	for _, r := range resources {
		for _, k := range r.Metadata.Keys() {
			if _, ok := out.Metadata.Get(k); !ok {
				v, _ := r.Metadata.Get(k)
				out.Metadata.Set(k, v)
			}
		}
		for _, e := range r.Entries {
			id := e.ID()
			pos, seen := positions[id]
			if !seen {
				positions[id] = len(out.Entries)
				out.Entries = append(out.Entries, e.Clone())
				continue
			}
			if out.Entries[pos].Value.Equal(e.Value) {
				continue
			}
			switch strategy {
			case First:
				// keep the earlier entry
			case Last:
				kept := e.Clone()
				out.Entries[pos] = kept
			case Fail:
				c, ok := conflicted[id]
				if !ok {
					c = &Conflict{
						Key:      id.Key,
						Language: id.Language,
						Values:   []Translation{out.Entries[pos].Value},
					}
					conflicted[id] = c
					conflictOrder = append(conflictOrder, id)
				}
				c.Values = append(c.Values, e.Value)
			}
		}
	}

	if len(conflicted) > 0 {
		sort.Slice(conflictOrder, func(i, j int) bool {
			if conflictOrder[i].Key != conflictOrder[j].Key {
				return conflictOrder[i].Key < conflictOrder[j].Key
			}
			return conflictOrder[i].Language < conflictOrder[j].Language
		})
		merr := &MergeConflict{}
		for _, id := range conflictOrder {
			merr.Conflicts = append(merr.Conflicts, *conflicted[id])
		}
		return Resource{}, merr
	}
	return out, nil
}
