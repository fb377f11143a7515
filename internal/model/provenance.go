package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// OwnerKind describes the legal form of a title holder.
type OwnerKind string

const (
	OwnerIndividual OwnerKind = "Individual"
	OwnerCompany    OwnerKind = "Company"
	OwnerTrust      OwnerKind = "Trust"
	OwnerGovernment OwnerKind = "Government"
)

// IsValid reports whether k is a known owner kind.
func (k OwnerKind) IsValid() bool {
	switch k {
	case OwnerIndividual, OwnerCompany, OwnerTrust, OwnerGovernment:
		return true
	default:
		return false
	}
}

// SourceEntry records which external source contributed owner data.
type SourceEntry struct {
	Name        string    `json:"name"`
	LastUpdated time.Time `json:"lastUpdated"`
	Confidence  float64   `json:"confidenceScore"`
}

// Owner is a person or entity holding title to one or more properties.
type Owner struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Kind        OwnerKind     `json:"type"`
	NetWorth    float64       `json:"netWorth"`
	Confidence  float64       `json:"confidenceScore"`
	PropertyIDs []string      `json:"properties"`
	LastUpdated time.Time     `json:"lastUpdated"`
	Sources     []SourceEntry `json:"dataSources"`
}

// Validate checks owner invariants. Property id references are resolved by the record store.
func (o Owner) Validate() error {
	if o.ID == "" {
		return eris.New("model: owner id is required")
	}
	if !o.Kind.IsValid() {
		return eris.Errorf("model: owner %s: invalid kind %q", o.ID, o.Kind)
	}
	if o.NetWorth < 0 {
		return eris.Errorf("model: owner %s: net worth must be non-negative", o.ID)
	}
	if !validConfidence(o.Confidence) {
		return eris.Errorf("model: owner %s: confidence %.3f outside [0,1]", o.ID, o.Confidence)
	}
	if len(o.PropertyIDs) == 0 {
		return eris.Errorf("model: owner %s: owns no properties", o.ID)
	}
	for _, s := range o.Sources {
		if !validConfidence(s.Confidence) {
			return eris.Errorf("model: owner %s: source %q confidence %.3f outside [0,1]", o.ID, s.Name, s.Confidence)
		}
	}
	return nil
}

// BestSource returns the provenance entry with the highest confidence.
func (o Owner) BestSource() (SourceEntry, bool) {
	if len(o.Sources) == 0 {
		return SourceEntry{}, false
	}
	best := o.Sources[0]
	for _, s := range o.Sources[1:] {
		if s.Confidence > best.Confidence {
			best = s
		}
	}
	return best, true
}

func validConfidence(c float64) bool {
	return c >= 0 && c <= 1
}
