package ingest

import (
	"regexp"
	"strings"
)

// Canonical field names produced by header normalization. Anything not in
// the variant table passes through with whitespace/quote cleanup only, so
// unknown columns survive schema drift instead of being dropped.
const (
	FieldProject      = "project"
	FieldDomain       = "domain"
	FieldBlockName    = "block_name"
	FieldExperiment   = "experiment"
	FieldRTLTag       = "rtl_tag"
	FieldUserName     = "user_name"
	FieldRunDirectory = "run_directory"
	FieldRunEndTime   = "run_end_time"
	FieldStage        = "stage"
	FieldRunStatus    = "run_status"
	FieldRuntime      = "runtime"
	FieldModule       = "module"
)

// headerVariants maps known messy header spellings (in lookup form: lower
// case, whitespace collapsed) to canonical snake_case field names. Real
// inbound sheets disagree on spacing, casing, and punctuation for the
// same logical column, so the table carries every spelling seen so far.
var headerVariants = map[string]string{
	"project":      FieldProject,
	"project name": FieldProject,

	"domain":        FieldDomain,
	"domain name":   "domain_name",
	"domain type":   "domain_type",
	"design domain": "design_domain",
	"eda domain":    "eda_domain",

	"block":      FieldBlockName,
	"block name": FieldBlockName,
	"block_name": FieldBlockName,

	"experiment":      FieldExperiment,
	"experiment name": FieldExperiment,

	"rtl tag":  FieldRTLTag,
	"rtl _tag": FieldRTLTag,
	"rtl_tag":  FieldRTLTag,

	"user":      FieldUserName,
	"user name": FieldUserName,
	"user_name": FieldUserName,
	"owner":     FieldUserName,

	"run directory": FieldRunDirectory,
	"run_directory": FieldRunDirectory,
	"run dir":       FieldRunDirectory,

	"run end time": FieldRunEndTime,
	"run_end_time": FieldRunEndTime,

	"stage": FieldStage,

	"internal timing (wns/tns/fep)":   "internal_timing",
	"internal timing":                 "internal_timing",
	"interface timing (wns/tns/fep)":  "interface_timing",
	"interface timing":                "interface_timing",
	"max tran (wns/nvp)":              "max_tran_wns_nvp",
	"max tran wns nvp":                "max_tran_wns_nvp",
	"max cap (wns/nvp)":               "max_cap_wns_nvp",
	"max cap wns nvp":                 "max_cap_wns_nvp",
	"noise":                           "noise",
	"mpw/min period/double switching": "mpw_min_period_double_switching",
	"mpw min period double switching": "mpw_min_period_double_switching",
	"congestion/drc metrics":          "congestion_drc_metrics",
	"congestion drc metrics":          "congestion_drc_metrics",

	"area(um2)":  "area_um2",
	"area (um2)": "area_um2",
	"area um2":   "area_um2",
	"area_um2":   "area_um2",

	"inst count":  "inst_count",
	"inst_count":  "inst_count",
	"instances":   "inst_count",
	"utilization": "utilization",

	"logs (errors & warnings)": "logs_errors_warnings",
	"logs errors warnings":     "logs_errors_warnings",

	"runtime(hr:min)":  FieldRuntime,
	"runtime (hr:min)": FieldRuntime,
	"runtime":          FieldRuntime,

	"ai based overall summary and suggestions": "ai_summary",
	"ai summary": "ai_summary",

	"ir (static)":                           "ir_static",
	"ir static":                             "ir_static",
	"em (power, signal)":                    "em_power_signal",
	"em power signal":                       "em_power_signal",
	"pv drc (base drc, metal drc, antenna)": "pv_drc",
	"pv drc":                                "pv_drc",
	"lvs":                                   "lvs",
	"lec":                                   "lec",

	"module":       FieldModule,
	"module name":  FieldModule,
	"tb dev total": "tb_dev_total",
	"tb_dev_total": "tb_dev_total",
	"tb dev coded": "tb_dev_coded",
	"tb_dev_coded": "tb_dev_coded",
	"test total":   "test_total",
	"test coded":   "test_coded",
	"test pass":    "test_pass",
	"test fail":    "test_fail",
	"assert total": "assert_total",
	"assert coded": "assert_coded",
	"assert pass":  "assert_pass",
	"assert fail":  "assert_fail",

	"code coverage %":       "code_coverage_percent",
	"code coverage":         "code_coverage_percent",
	"functional coverage %": "functional_coverage_percent",
	"functional coverage":   "functional_coverage_percent",

	"req total":     "req_total",
	"req covered":   "req_covered",
	"req uncovered": "req_uncovered",
	"block status":  "block_status",
	"block_status":  "block_status",
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// The run-status column header embeds its enum values and shows up
	// with wildly inconsistent spacing.
	runStatusHeader = regexp.MustCompile(
		`(?i)^run\s*status\s*(\(\s*pass\s*/\s*fail\s*/\s*continue[ _]?with[ _]?error\s*\))?$`)
)

// cleanHeader collapses internal whitespace runs to single spaces, strips
// surrounding quotes, and trims.
func cleanHeader(header string) string {
	h := strings.TrimSpace(header)
	h = strings.Trim(h, `"'`)
	h = whitespaceRun.ReplaceAllString(h, " ")

	return strings.TrimSpace(h)
}

// NormalizeHeader maps one raw CSV header to its canonical field name.
// Headers not in the variant table pass through with cleanup only.
func NormalizeHeader(header string) string {
	cleaned := cleanHeader(header)

	if runStatusHeader.MatchString(cleaned) {
		return FieldRunStatus
	}

	lookup := strings.ToLower(cleaned)
	// Underscores and spaces are interchangeable in the wild.
	if canonical, ok := headerVariants[lookup]; ok {
		return canonical
	}

	if canonical, ok := headerVariants[strings.ReplaceAll(lookup, "_", " ")]; ok {
		return canonical
	}

	return cleaned
}

// Row is one CSV row keyed by canonical field name. Values are raw
// strings; typed coercion happens in the domain processors.
type Row map[string]string

// Get returns the trimmed value for a field, or "" when absent.
func (r Row) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// NormalizeRow rekeys a raw header→value mapping by canonical field
// names. It never fails; empty values stay empty strings.
func NormalizeRow(headers, values []string) Row {
	row := make(Row, len(headers))

	for i, header := range headers {
		if i >= len(values) {
			break
		}

		row[NormalizeHeader(header)] = values[i]
	}

	return row
}
