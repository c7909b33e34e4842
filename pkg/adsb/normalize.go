package adsb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/unklstewy/adsb-tracker/pkg/flex"
)

// DefaultSafeIntegerLimit is the largest integer magnitude every JSON consumer
// can represent exactly (2^53-1).
const DefaultSafeIntegerLimit int64 = 1<<53 - 1

// NormalizerOptions configures a Normalizer.
type NormalizerOptions struct {
	// Military classifies records. Nil selects CallsignPrefixPolicy.
	Military MilitaryPolicy

	// SafeIntegerLimit bounds integer literals accepted without sanitizing.
	// Zero selects DefaultSafeIntegerLimit; negative disables the check.
	SafeIntegerLimit int64
}

// Normalizer maps raw aircraft objects to Aircraft records.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	military  MilitaryPolicy
	safeLimit int64
}

// NewNormalizer creates a normalizer.
func NewNormalizer(opts NormalizerOptions) *Normalizer {
	n := &Normalizer{
		military:  opts.Military,
		safeLimit: opts.SafeIntegerLimit,
	}
	if n.military == nil {
		n.military = CallsignPrefixPolicy{}
	}
	if n.safeLimit == 0 {
		n.safeLimit = DefaultSafeIntegerLimit
	}
	return n
}

// SafeIntegerLimit returns the effective limit, negative when disabled.
func (n *Normalizer) SafeIntegerLimit() int64 { return n.safeLimit }

// Normalize decodes one aircraft object. It fails with ErrMissingIdentity when
// hex is absent or unusable and with ErrUnsafeInteger when any top-level field
// holds an integer literal beyond the safe limit. All other field problems
// leave that field empty.
func (n *Normalizer) Normalize(raw json.RawMessage) (Aircraft, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Aircraft{}, fmt.Errorf("decode aircraft object: %w", err)
	}
	if fields == nil {
		return Aircraft{}, ErrMissingIdentity
	}

	if n.safeLimit > 0 {
		for name, value := range fields {
			if flex.IsUnsafeInteger(value, n.safeLimit) {
				return Aircraft{}, fmt.Errorf("field %s: %w", name, ErrUnsafeInteger)
			}
		}
	}

	hex := flex.Decode(fields["hex"])
	if hex.Kind() == flex.Null || hex.Kind() == flex.Bool {
		return Aircraft{}, ErrMissingIdentity
	}
	id := strings.ToLower(strings.TrimSpace(hex.Str()))
	if id == "" {
		return Aircraft{}, ErrMissingIdentity
	}

	get := func(name string) flex.Value { return flex.Decode(fields[name]) }

	ac := Aircraft{
		Hex:            id,
		Type:           get("type").Str(),
		Flight:         get("flight").Str(),
		Registration:   strings.TrimSpace(get("r").Str()),
		TypeDesignator: strings.TrimSpace(get("t").Str()),
		Category:       get("category").Str(),
		Squawk:         get("squawk").Str(),
		Emergency:      get("emergency").Str(),
		Lat:            get("lat").FloatPtr(),
		Lon:            get("lon").FloatPtr(),
		AltGeom:        get("alt_geom").IntPtr(),
		GroundSpeed:    get("gs").FloatPtr(),
		Track:          get("track").FloatPtr(),
		IAS:            get("ias").IntPtr(),
		TAS:            get("tas").IntPtr(),
		Mach:           get("mach").FloatPtr(),
		BaroRate:       get("baro_rate").IntPtr(),
		GeomRate:       get("geom_rate").IntPtr(),
		Messages:       get("messages").IntPtr(),
		Seen:           get("seen").FloatPtr(),
		RSSI:           get("rssi").FloatPtr(),
		MLAT:           stringList(fields["mlat"]),
		TISB:           stringList(fields["tisb"]),
		NavModes:       stringList(fields["nav_modes"]),
	}

	altBaro := get("alt_baro")
	if s, ok := altBaro.AsString(); ok && altBaro.Kind() == flex.String && strings.EqualFold(strings.TrimSpace(s), "ground") {
		ac.OnGround = true
	} else {
		ac.AltBaro = altBaro.IntPtr()
	}

	ac.IsEmergency = emergencyFor(ac.Emergency)
	ac.Feeder = feederTypeFor(ac.TypeDesignator)
	ac.IsMilitary = n.military.IsMilitary(ac)

	return ac, nil
}

// stringList decodes an array of strings, ignoring anything else.
func stringList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := flex.Decode(item); v.Kind() == flex.String {
			out = append(out, v.Str())
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sanitizeUnsafeIntegers rewrites every top-level integer literal beyond limit
// into a string holding the same digits.
func sanitizeUnsafeIntegers(raw json.RawMessage, limit int64) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for name, value := range fields {
		if flex.IsUnsafeInteger(value, limit) {
			fields[name] = flex.Quote(value)
		}
	}
	return json.Marshal(fields)
}
