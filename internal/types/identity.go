// Package types defines the core data model shared across the discovery engine.
package types

import "strings"

// UnknownProperty is the sentinel canonical name used when the identity
// resolver could not extract a property name. Downstream stages must
// tolerate it and still produce a finding.
const UnknownProperty = "UNKNOWN_PROPERTY"

// PropertyIdentity is the resolved identity of a hotel property.
// It is created once per run and is immutable after resolution.
type PropertyIdentity struct {
	RawInput      string `json:"raw_input"`
	CanonicalName string `json:"canonical_name"`
}

// Resolved reports whether a usable canonical name was extracted.
func (p PropertyIdentity) Resolved() bool {
	name := strings.TrimSpace(p.CanonicalName)
	return name != "" && name != UnknownProperty
}
