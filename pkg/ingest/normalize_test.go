package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "plain project", header: "Project", want: "project"},
		{name: "quoted header", header: `"Block Name"`, want: "block_name"},
		{name: "rtl tag with stray space", header: "RTL _tag", want: "rtl_tag"},
		{name: "area with unit", header: "Area(um2)", want: "area_um2"},
		{name: "area spaced unit", header: "Area (um2)", want: "area_um2"},
		{name: "run end time", header: "run end time", want: "run_end_time"},
		{name: "runtime with format hint", header: "Runtime(hr:min)", want: "runtime"},
		{
			name:   "run status with enum values",
			header: "Run Status (pass/fail/continue_with_error)",
			want:   "run_status",
		},
		{
			name:   "run status odd spacing",
			header: "RUN  STATUS ( PASS / FAIL / CONTINUE_WITH_ERROR )",
			want:   "run_status",
		},
		{name: "run status bare", header: "Run Status", want: "run_status"},
		{
			name:   "internal timing",
			header: "Internal Timing (WNS/TNS/FEP)",
			want:   "internal_timing",
		},
		{
			name:   "logs column",
			header: "Logs (Errors & Warnings)",
			want:   "logs_errors_warnings",
		},
		{
			name:   "ai summary",
			header: "AI based overall summary and suggestions",
			want:   "ai_summary",
		},
		{name: "coverage percent", header: "Code Coverage %", want: "code_coverage_percent"},
		{
			name:   "whitespace runs collapsed",
			header: "  block    name  ",
			want:   "block_name",
		},
		{
			name:   "unknown header passes through cleaned",
			header: `  "Some   Custom Column"  `,
			want:   "Some Custom Column",
		},
		{name: "empty header", header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.header))
		})
	}
}

func TestNormalizeRow(t *testing.T) {
	headers := []string{"Project", "Block Name", "Area(um2)", "Mystery"}
	values := []string{"Alpha", "core", "123.4", "x"}

	row := NormalizeRow(headers, values)

	assert.Equal(t, "Alpha", row.Get(FieldProject))
	assert.Equal(t, "core", row.Get(FieldBlockName))
	assert.Equal(t, "123.4", row.Get("area_um2"))
	assert.Equal(t, "x", row.Get("Mystery"))
}

func TestNormalizeRowShortRecord(t *testing.T) {
	headers := []string{"Project", "Block Name", "Experiment"}
	values := []string{"Alpha", "core"}

	row := NormalizeRow(headers, values)

	assert.Equal(t, "Alpha", row.Get(FieldProject))
	assert.Equal(t, "core", row.Get(FieldBlockName))
	assert.Equal(t, "", row.Get(FieldExperiment))
}

func TestHeaderNormalizationInvariance(t *testing.T) {
	// Differently cased/spaced/quoted spellings of the same logical
	// columns normalize to identical canonical keys.
	variantsA := []string{"Project", "Block Name", "RTL _tag", "Run End Time"}
	variantsB := []string{`"project"`, "BLOCK  NAME", "rtl_tag", "run end time"}

	values := []string{"Alpha", "core", "v1.2", "31/01/2024"}

	rowA := NormalizeRow(variantsA, values)
	rowB := NormalizeRow(variantsB, values)

	assert.Equal(t, rowA, rowB)
}
