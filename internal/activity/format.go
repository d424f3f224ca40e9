package activity

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	NotSet         = "Not set"
	emptyList      = "Empty"
	maxRecordChars = 100
	maxListItems   = 3
)

// Change is one displayable "field: old → new" row.
type Change struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// FormatChange renders both sides of a field change. The second return is false when
// there is nothing worth showing: identical output on both sides, or both sides empty.
func FormatChange(field string, old, new Value) (Change, bool) {
	o := FormatValue(field, old)
	n := FormatValue(field, new)
	if o == n {
		return Change{}, false
	}
	if IsEmptyText(o) && IsEmptyText(n) {
		return Change{}, false
	}
	return Change{Field: Label(field), Old: o, New: n}, true
}

// FormatValue renders a single value the way the activity feed shows it.
func FormatValue(field string, v Value) string {
	name := strings.ToLower(field)

	switch v.kind {
	case KindEmpty:
		return NotSet
	case KindText:
		if v.text == "" {
			return NotSet
		}
	}

	if strings.Contains(name, "progress") {
		if d, ok := numeric(v); ok {
			return d.String() + "%"
		}
	}

	switch v.kind {
	case KindList:
		return formatList(name, v.list)
	case KindRecord:
		return formatRecord(v)
	case KindBool:
		if v.flag {
			return "Yes"
		}
		return "No"
	case KindNumber:
		return v.num.String()
	}

	if strings.TrimSpace(v.text) == "" {
		return NotSet
	}
	return v.text
}

func numeric(v Value) (decimal.Decimal, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		s := strings.TrimSpace(v.text)
		if s == "" {
			return decimal.Decimal{}, false
		}
		// ParseFloat accepts "NaN" and "Inf".
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, false
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d, true
		}
		return decimal.NewFromFloat(f), true
	}
	return decimal.Decimal{}, false
}

func formatList(field string, items []Value) string {
	if len(items) == 0 {
		return emptyList
	}

	if strings.Contains(field, "technical") {
		var names []string
		for _, item := range items {
			if len(names) == maxListItems {
				break
			}
			if n := sectionName(item); n != "" {
				names = append(names, n)
			}
		}
		out := strconv.Itoa(len(items)) + " sections"
		if len(names) > 0 {
			out += " (" + strings.Join(names, ", ")
			if len(items) > maxListItems {
				out += "..."
			}
			out += ")"
		}
		return out
	}

	if len(items) <= maxListItems {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = listItem(item)
		}
		return strings.Join(parts, ", ")
	}
	return strconv.Itoa(len(items)) + " items"
}

func sectionName(v Value) string {
	switch v.kind {
	case KindText:
		return strings.TrimSpace(v.text)
	case KindRecord:
		return recordName(v)
	}
	return ""
}

func listItem(v Value) string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindText:
		return v.text
	case KindNumber:
		return v.num.String()
	case KindBool:
		return strconv.FormatBool(v.flag)
	}
	return v.jsonString()
}

func recordName(v Value) string {
	for _, key := range []string{"name", "section_name", "title"} {
		f := v.Field(key)
		if f.kind == KindText && strings.TrimSpace(f.text) != "" {
			return f.text
		}
	}
	return ""
}

// formatRecord falls back to the record's JSON, cut so the result including
// the trailing "..." stays within maxRecordChars runes.
func formatRecord(v Value) string {
	if name := recordName(v); name != "" {
		return name
	}
	s := v.jsonString()
	if utf8.RuneCountInString(s) > maxRecordChars {
		return string([]rune(s)[:maxRecordChars-3]) + "..."
	}
	return s
}

// IsEmptyText reports whether a formatted string is one of the "nothing here" spellings:
// empty, "Not set", "null" or "undefined", ignoring case, spaces, dashes and underscores.
func IsEmptyText(s string) bool {
	squashed := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	switch squashed {
	case "", "notset", "null", "undefined":
		return true
	}
	return false
}

// Label turns a stored field name into a heading: "tag_number" and "tagNumber" both become "Tag Number".
func Label(field string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(field))
	for i, r := range runes {
		if r == '_' || r == '-' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
