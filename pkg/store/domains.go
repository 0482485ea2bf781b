package store

import "time"

// Fixed domain identifiers. These match the seeded domains table and are
// stable across deployments; ingested records reference them directly.
const (
	DomainIDPD  uint = 1
	DomainIDRTL uint = 2
	DomainIDDV  uint = 3
	DomainIDCD  uint = 4
	DomainIDCL  uint = 5
	DomainIDDFT uint = 6
)

// Domain codes.
const (
	DomainPD      = "PD"
	DomainRTL     = "RTL"
	DomainDV      = "DV"
	DomainCD      = "CD"
	DomainCL      = "CL"
	DomainDFT     = "DFT"
	DomainUnknown = "UNKNOWN"
)

// Domain is an EDA discipline (Physical Design, Design Verification, ...).
type Domain struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// seedDomains is the fixed set of domains written on startup.
var seedDomains = []Domain{
	{ID: DomainIDPD, Code: DomainPD, Name: "Physical Design"},
	{ID: DomainIDRTL, Code: DomainRTL, Name: "Register Transfer Level"},
	{ID: DomainIDDV, Code: DomainDV, Name: "Design Verification"},
	{ID: DomainIDCD, Code: DomainCD, Name: "Clock Design"},
	{ID: DomainIDCL, Code: DomainCL, Name: "Custom Layout"},
	{ID: DomainIDDFT, Code: DomainDFT, Name: "Design for Testability"},
}

// DomainIDForCode maps a domain code to its fixed identifier. The second
// return value is false for UNKNOWN or unrecognized codes.
func DomainIDForCode(code string) (uint, bool) {
	for _, d := range seedDomains {
		if d.Code == code {
			return d.ID, true
		}
	}

	return 0, false
}

// DomainName returns the human-readable name for a domain code, or the
// code itself when unrecognized.
func DomainName(code string) string {
	for _, d := range seedDomains {
		if d.Code == code {
			return d.Name
		}
	}

	return code
}
