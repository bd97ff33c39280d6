package domain

import "strings"

// Domain is one of the two fixed complaint namespaces.
type Domain string

const (
	DomainLab Domain = "lab"
	DomainICC Domain = "icc"
)

// Domains lists every supported namespace.
var Domains = []Domain{DomainLab, DomainICC}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	return d == DomainLab || d == DomainICC
}

// DisplayName is the label used in submitter-facing messages.
func (d Domain) DisplayName() string {
	switch d {
	case DomainLab:
		return "Lab"
	case DomainICC:
		return "ICC"
	default:
		return strings.ToUpper(string(d))
	}
}

// ParseDomain normalizes raw input into a Domain.
func ParseDomain(raw string) (Domain, bool) {
	d := Domain(strings.ToLower(strings.TrimSpace(raw)))
	return d, d.Valid()
}
