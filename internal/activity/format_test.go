package activity

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatChange_Progress(t *testing.T) {
	c, ok := FormatChange("progress", Decode(42), Decode(75))
	require.True(t, ok)
	assert.Equal(t, Change{Field: "Progress", Old: "42%", New: "75%"}, c)
}

func TestFormatChange_ProgressFromText(t *testing.T) {
	c, ok := FormatChange("progress_phase_progress", Text(" 12.5 "), Decode(float64(30)))
	require.True(t, ok)
	assert.Equal(t, "12.5%", c.Old)
	assert.Equal(t, "30%", c.New)
}

func TestFormatChange_ProgressNonNumericFallsThrough(t *testing.T) {
	c, ok := FormatChange("progress", Text("NaN"), Text("fabrication"))
	require.True(t, ok)
	assert.Equal(t, "NaN", c.Old)
	assert.Equal(t, "fabrication", c.New)
}

func TestFormatChange_BothEmptySuppressed(t *testing.T) {
	_, ok := FormatChange("notes", Decode(""), Decode(nil))
	assert.False(t, ok)

	_, ok = FormatChange("notes", Text("   "), Text("null"))
	assert.False(t, ok)

	_, ok = FormatChange("notes", Text("Not-set"), Empty())
	assert.False(t, ok)
}

func TestFormatChange_IdenticalSuppressed(t *testing.T) {
	_, ok := FormatChange("status", Text("approved"), Text("approved"))
	assert.False(t, ok)
}

func TestFormatChange_EmptyToValue(t *testing.T) {
	c, ok := FormatChange("supervisor", Empty(), Text("R. Sharma"))
	require.True(t, ok)
	assert.Equal(t, Change{Field: "Supervisor", Old: NotSet, New: "R. Sharma"}, c)
}

func TestFormatValue_Lists(t *testing.T) {
	assert.Equal(t, "Empty", FormatValue("equipment_assignments", List()))
	assert.Equal(t, "HX-101, PV-201", FormatValue("equipment_assignments", Decode([]string{"HX-101", "PV-201"})))
	assert.Equal(t, "4 items", FormatValue("job_numbers", Decode([]any{"a", "b", "c", "d"})))
	assert.Equal(t, `1, {"k":"v"}`, FormatValue("misc", Decode([]any{float64(1), map[string]any{"k": "v"}})))
}

func TestFormatValue_TechnicalSections(t *testing.T) {
	sections := Decode([]any{
		map[string]any{"name": "Shell"},
		map[string]any{"section_name": "Tube Bundle"},
		map[string]any{"title": "Nozzles"},
		map[string]any{"name": "Supports"},
	})
	assert.Equal(t, "4 sections (Shell, Tube Bundle, Nozzles...)", FormatValue("technical_sections", sections))

	two := Decode([]any{map[string]any{"name": "Shell"}, "Heads"})
	assert.Equal(t, "2 sections (Shell, Heads)", FormatValue("technicalSections", two))

	unnamed := Decode([]any{map[string]any{"rows": float64(3)}})
	assert.Equal(t, "1 sections", FormatValue("technical_sections", unnamed))
}

func TestFormatValue_Records(t *testing.T) {
	assert.Equal(t, "Shell", FormatValue("section", Decode(map[string]any{"name": "Shell", "x": float64(1)})))
	assert.Equal(t, `{"a":1,"b":"two"}`, FormatValue("custom", Decode(map[string]any{"b": "two", "a": float64(1)})))

	long := Decode(map[string]any{"text": strings.Repeat("x", 200)})
	out := FormatValue("custom", long)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Len(t, []rune(out), maxRecordChars)

	exact := Decode(map[string]any{"t": strings.Repeat("y", maxRecordChars-8)})
	assert.Equal(t, `{"t":"`+strings.Repeat("y", maxRecordChars-8)+`"}`, FormatValue("custom", exact))
}

func TestFormatValue_Scalars(t *testing.T) {
	assert.Equal(t, "Yes", FormatValue("dispatched", Bool(true)))
	assert.Equal(t, "No", FormatValue("dispatched", Bool(false)))
	assert.Equal(t, "3.25", FormatValue("weight", Number(decimal.RequireFromString("3.25"))))
	assert.Equal(t, NotSet, FormatValue("notes", Text("  ")))
	assert.Equal(t, " padded ", FormatValue("notes", Text(" padded ")))
}

func TestIsEmptyText(t *testing.T) {
	for _, s := range []string{"", "Not set", "not_set", "NOT-SET", "null", "Undefined", "  "} {
		assert.True(t, IsEmptyText(s), s)
	}
	for _, s := range []string{"0", "No", "Empty", "nullable"} {
		assert.False(t, IsEmptyText(s), s)
	}
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"progress":          "Progress",
		"tag_number":        "Tag Number",
		"tagNumber":         "Tag Number",
		"nextMilestoneDate": "Next Milestone Date",
		"equipment-type":    "Equipment Type",
		"po2Date":           "Po2 Date",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Label(in), in)
	}
}
