package types

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Generation identifies a schema generation of the cluster entity. The value is a
// major.minor.patch version; the major number selects the shape.
type Generation string

const (
	// Generation1 is the original snake_case entity shape.
	Generation1 Generation = "1.0.0"

	// Generation2 is the camelCase shape with topology, cloud properties and per-node sizing.
	Generation2 Generation = "2.0.0"
)

// payloadVersionPrefix is the API-group form used by request payloads, e.g. "cse.vmware.com/v2.0".
const payloadVersionPrefix = "cse.vmware.com/v"

// Generations returns the registered generations, oldest first.
func Generations() []Generation {
	return []Generation{Generation1, Generation2}
}

// String returns the version string.
func (g Generation) String() string {
	return string(g)
}

// Major returns the major version, or 0 if the generation is not a valid version.
func (g Generation) Major() uint64 {
	v, err := semver.NewVersion(string(g))
	if err != nil {
		return 0
	}
	return v.Major()
}

// IsRegistered reports whether g is one of the known generations.
func (g Generation) IsRegistered() bool {
	switch g {
	case Generation1, Generation2:
		return true
	}
	return false
}

// ParseGeneration maps a version string onto a registered generation by major version.
func ParseGeneration(s string) (Generation, error) {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return "", NewUnsupportedPayloadVersionError(s, err)
	}

	switch v.Major() {
	case 1:
		return Generation1, nil
	case 2:
		return Generation2, nil
	default:
		return "", NewUnsupportedPayloadVersionError(s, nil)
	}
}

// ParsePayloadVersion accepts either a bare version ("2.0.0", "2.0") or the
// API-group form ("cse.vmware.com/v2.0").
func ParsePayloadVersion(s string) (Generation, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", NewMalformedPayloadError("payloadVersion is required", nil)
	}
	trimmed = strings.TrimPrefix(trimmed, payloadVersionPrefix)
	return ParseGeneration(trimmed)
}

// PayloadVersion renders the API-group form of a generation.
func (g Generation) PayloadVersion() string {
	v, err := semver.NewVersion(string(g))
	if err != nil {
		return payloadVersionPrefix + string(g)
	}
	return fmt.Sprintf("%s%d.%d", payloadVersionPrefix, v.Major(), v.Minor())
}
