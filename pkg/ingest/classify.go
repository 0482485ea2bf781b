package ingest

import (
	"strings"

	"github.com/siliconops/ingestoor/pkg/store"
)

// domainFields are the row fields consulted for a domain value, in
// priority order. The first present, non-empty one wins.
var domainFields = []string{
	"domain",
	"domain_name",
	"domain_type",
	"design_domain",
	"eda_domain",
}

// domainSynonyms maps upper-cased domain spellings to domain codes.
var domainSynonyms = map[string]string{
	"PD":                      store.DomainPD,
	"PHYSICAL DESIGN":         store.DomainPD,
	"PHYSICAL":                store.DomainPD,
	"DV":                      store.DomainDV,
	"DESIGN VERIFICATION":     store.DomainDV,
	"VERIFICATION":            store.DomainDV,
	"RTL":                     store.DomainRTL,
	"REGISTER TRANSFER LEVEL": store.DomainRTL,
	"CD":                      store.DomainCD,
	"CLOCK DESIGN":            store.DomainCD,
	"CLOCK":                   store.DomainCD,
	"CL":                      store.DomainCL,
	"CUSTOM LAYOUT":           store.DomainCL,
	"CUSTOM":                  store.DomainCL,
	"DFT":                     store.DomainDFT,
	"DESIGN FOR TESTABILITY":  store.DomainDFT,
	"TESTABILITY":             store.DomainDFT,
}

// ClassifyDomain assigns a row to exactly one domain code. Rows with no
// recognizable domain value classify as UNKNOWN; the orchestrator logs
// and drops those rather than guessing.
func ClassifyDomain(row Row) string {
	var value string

	for _, field := range domainFields {
		if v := row.Get(field); v != "" {
			value = v

			break
		}
	}

	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return store.DomainUnknown
	}

	if code, ok := domainSynonyms[value]; ok {
		return code
	}

	return store.DomainUnknown
}
