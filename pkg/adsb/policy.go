package adsb

import (
	"fmt"
	"strings"
)

// ValidityRule decides whether a record is usable by the cache.
type ValidityRule int

const (
	// RequirePosition accepts any record with latitude and longitude.
	RequirePosition ValidityRule = iota
	// RequirePositionAndCallsign additionally requires a non-blank callsign.
	RequirePositionAndCallsign
)

// Usable applies the rule to a record.
func (r ValidityRule) Usable(a Aircraft) bool {
	if !a.HasPosition() {
		return false
	}
	if r == RequirePositionAndCallsign {
		return a.Callsign() != ""
	}
	return true
}

func (r ValidityRule) String() string {
	if r == RequirePositionAndCallsign {
		return "position_and_callsign"
	}
	return "position"
}

// ParseValidityRule maps a config value to a rule. "" selects RequirePosition.
func ParseValidityRule(s string) (ValidityRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "position":
		return RequirePosition, nil
	case "position_and_callsign", "callsign":
		return RequirePositionAndCallsign, nil
	}
	return 0, fmt.Errorf("unknown validity rule %q", s)
}

// MilitaryPolicy classifies a record as military. It sees the record after
// every wire field has been normalized.
type MilitaryPolicy interface {
	IsMilitary(a Aircraft) bool
}

// MilitaryPolicyFunc adapts a function to MilitaryPolicy.
type MilitaryPolicyFunc func(a Aircraft) bool

// IsMilitary calls f(a).
func (f MilitaryPolicyFunc) IsMilitary(a Aircraft) bool { return f(a) }

// DefaultMilitaryCallsigns is the callsign prefix allow-list used by
// CallsignPrefixPolicy when none is configured.
var DefaultMilitaryCallsigns = []string{"RCH", "REACH", "CONVOY", "ARMY", "NAVY", "USAF", "MARINES", "USMC"}

// CallsignPrefixPolicy marks a record military when its trimmed callsign
// starts with one of Prefixes (case-insensitive).
type CallsignPrefixPolicy struct {
	Prefixes []string
}

// IsMilitary implements MilitaryPolicy.
func (p CallsignPrefixPolicy) IsMilitary(a Aircraft) bool {
	cs := strings.ToUpper(a.Callsign())
	if cs == "" {
		return false
	}
	prefixes := p.Prefixes
	if prefixes == nil {
		prefixes = DefaultMilitaryCallsigns
	}
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(cs, strings.ToUpper(prefix)) {
			return true
		}
	}
	return false
}

// TypeDesignatorPolicy marks a record military from its ICAO type: designators
// with a dash (e.g. "H-60") or short F/B/C types (F16, B52, C17).
type TypeDesignatorPolicy struct{}

// IsMilitary implements MilitaryPolicy.
func (TypeDesignatorPolicy) IsMilitary(a Aircraft) bool {
	t := strings.ToUpper(strings.TrimSpace(a.TypeDesignator))
	if t == "" {
		return false
	}
	if strings.Contains(t, "-") {
		return true
	}
	if len(t) <= 3 {
		switch t[0] {
		case 'F', 'B', 'C':
			return true
		}
	}
	return false
}

// ParseMilitaryPolicy maps a config value to a policy. "" selects the
// callsign allow-list.
func ParseMilitaryPolicy(s string) (MilitaryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "callsign":
		return CallsignPrefixPolicy{}, nil
	case "type", "type_designator":
		return TypeDesignatorPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown military policy %q", s)
}
