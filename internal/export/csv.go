// Package export writes flat records as downloadable CSV.
package export

import (
	"bufio"
	"io"
	"strings"
)

// Field is one named cell of a Record.
type Field struct {
	Key   string
	Value string
}

// Record is a row whose column order is the order of its fields.
type Record []Field

// Get returns the value stored under key, or "" when absent.
func (r Record) Get(key string) string {
	for _, f := range r {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Keys returns the column names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// WriteCSV writes a header line built from the first record's keys, then one line per record
// with every cell double-quoted. Embedded quotes are doubled so cells holding `"` still parse;
// a bare wrap would split them. Lines are separated by "\n" with no trailing newline.
// Cells are looked up by header key, so later records may order their fields differently.
// An empty slice writes nothing.
func WriteCSV(w io.Writer, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	header := records[0].Keys()
	if _, err := bw.WriteString(strings.Join(header, ",")); err != nil {
		return err
	}

	for _, rec := range records {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		for i, key := range header {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(quote(rec.Get(key))); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// String renders records with WriteCSV.
func String(records []Record) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, records)
	return sb.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
