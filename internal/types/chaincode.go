package types

// UnknownChainCode is reported when no GDS chain code could be determined.
const UnknownChainCode = "UNKNOWN"

// ChainCodeResult holds the GDS chain code resolved for a property.
// It is computed independently of the booking finding, never derived from it.
type ChainCodeResult struct {
	Code string `json:"code"`
}

// Known reports whether a real chain code was resolved.
func (c ChainCodeResult) Known() bool {
	return c.Code != "" && c.Code != UnknownChainCode
}
