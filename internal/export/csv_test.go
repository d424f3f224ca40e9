package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_SingleRecord(t *testing.T) {
	out := String([]Record{{{Key: "a", Value: "1"}, {Key: "b", Value: "x"}}})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a,b", lines[0])
	assert.Equal(t, `"1","x"`, lines[1])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestWriteCSV_QuotesAndMissingCells(t *testing.T) {
	records := []Record{
		{{Key: "Document Name", Value: `GA "rev" drawing`}, {Key: "Status", Value: "approved"}},
		{{Key: "Status", Value: "pending"}},
	}
	want := "Document Name,Status\n" +
		`"GA ""rev"" drawing","approved"` + "\n" +
		`"","pending"`
	assert.Equal(t, want, String(records))
}

func TestWriteCSV_EmbeddedQuotesParse(t *testing.T) {
	records := []Record{{{Key: "Remarks", Value: `said "ok", then left`}}}
	rows, err := csv.NewReader(strings.NewReader(String(records))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{`said "ok", then left`}, rows[1])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_PropagatesWriteError(t *testing.T) {
	err := WriteCSV(failingWriter{}, []Record{{{Key: "a", Value: "1"}}})
	assert.EqualError(t, err, "disk full")
}
