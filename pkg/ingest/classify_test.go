package ingest

import (
	"testing"

	"github.com/siliconops/ingestoor/pkg/store"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDomain(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want string
	}{
		{name: "pd code", row: Row{"domain": "PD"}, want: store.DomainPD},
		{name: "pd full name", row: Row{"domain": "Physical Design"}, want: store.DomainPD},
		{name: "pd short lowercase", row: Row{"domain": "physical"}, want: store.DomainPD},
		{name: "pd whitespace", row: Row{"domain": "  pd  "}, want: store.DomainPD},
		{name: "dv code", row: Row{"domain": "dv"}, want: store.DomainDV},
		{name: "dv full name", row: Row{"domain": "DESIGN VERIFICATION"}, want: store.DomainDV},
		{name: "rtl", row: Row{"domain": "Register Transfer Level"}, want: store.DomainRTL},
		{name: "clock design", row: Row{"domain": "Clock"}, want: store.DomainCD},
		{name: "custom layout", row: Row{"domain": "custom layout"}, want: store.DomainCL},
		{name: "dft", row: Row{"domain": "testability"}, want: store.DomainDFT},
		{name: "empty value", row: Row{"domain": ""}, want: store.DomainUnknown},
		{name: "no domain field", row: Row{"project": "Alpha"}, want: store.DomainUnknown},
		{name: "unrecognized", row: Row{"domain": "analog"}, want: store.DomainUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDomain(tt.row))
		})
	}
}

func TestClassifyDomainFieldPriority(t *testing.T) {
	// The first present, non-empty candidate field wins.
	row := Row{
		"domain":      "",
		"domain_name": "DV",
		"domain_type": "PD",
	}
	assert.Equal(t, store.DomainDV, ClassifyDomain(row))

	row = Row{
		"design_domain": "CL",
		"eda_domain":    "PD",
	}
	assert.Equal(t, store.DomainCL, ClassifyDomain(row))
}
