package activity

import "sort"

// FieldChange is a raw before/after pair for one field, ready to be stored as an activity log.
type FieldChange struct {
	Field string
	Old   Value
	New   Value
}

// Diff lists the fields whose values differ between before and after, sorted by field name.
// A field missing on one side compares as Empty.
func Diff(before, after map[string]Value) []FieldChange {
	seen := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		seen[k] = struct{}{}
	}
	for k := range after {
		seen[k] = struct{}{}
	}

	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var changes []FieldChange
	for _, f := range fields {
		o, ok := before[f]
		if !ok {
			o = Empty()
		}
		n, ok := after[f]
		if !ok {
			n = Empty()
		}
		if !o.Equal(n) {
			changes = append(changes, FieldChange{Field: f, Old: o, New: n})
		}
	}
	return changes
}
