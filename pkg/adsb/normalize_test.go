package adsb

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFullRecord(t *testing.T) {
	raw := `{
		"hex": "A1B2C3", "type": "adsb_icao", "flight": "UAL123  ", "r": "N12345", "t": "B738",
		"category": "A3", "lat": 37.61, "lon": "-122.38", "alt_baro": 35000, "alt_geom": "35550",
		"gs": "451.2", "track": 271, "ias": 280.7, "tas": "460", "mach": 0.78,
		"baro_rate": -64, "geom_rate": "0", "squawk": "1200", "emergency": "none",
		"messages": 1234, "seen": 0.4, "rssi": -21.5,
		"mlat": [], "tisb": ["lat"], "nav_modes": ["autopilot", "tcas", 3]
	}`

	ac, err := NewNormalizer(NormalizerOptions{}).Normalize(json.RawMessage(raw))
	require.NoError(t, err)

	assert.Equal(t, "a1b2c3", ac.Hex)
	assert.Equal(t, "UAL123", ac.Callsign())
	assert.Equal(t, "UAL123  ", ac.Flight)
	assert.Equal(t, "N12345", ac.Registration)
	assert.Equal(t, "B738", ac.TypeDesignator)
	require.True(t, ac.HasPosition())
	assert.InDelta(t, -122.38, *ac.Lon, 1e-9)
	assert.Equal(t, int64(35000), *ac.AltBaro)
	assert.Equal(t, int64(35550), *ac.AltGeom)
	assert.InDelta(t, 451.2, *ac.GroundSpeed, 1e-9)
	assert.InDelta(t, 271, *ac.Track, 1e-9)
	assert.Equal(t, int64(280), *ac.IAS)
	assert.Equal(t, int64(460), *ac.TAS)
	assert.Equal(t, int64(-64), *ac.BaroRate)
	assert.Equal(t, int64(1234), *ac.Messages)
	assert.Nil(t, ac.MLAT)
	assert.Equal(t, []string{"lat"}, ac.TISB)
	assert.Equal(t, []string{"autopilot", "tcas"}, ac.NavModes)
	assert.False(t, ac.IsEmergency)
	assert.False(t, ac.IsMilitary)
	assert.Equal(t, FeederAircraft, ac.Feeder)
	assert.Equal(t, "Medium Aircraft (A3)", ac.CategoryDescription())
}

func TestNormalizeMissingIdentity(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{})

	tests := []struct {
		name string
		raw  string
	}{
		{name: "absent", raw: `{"lat":1,"lon":2}`},
		{name: "null", raw: `{"hex":null}`},
		{name: "blank", raw: `{"hex":"   "}`},
		{name: "object", raw: `{"hex":{"a":1}}`},
		{name: "bool", raw: `{"hex":true}`},
		{name: "null document", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(json.RawMessage(tt.raw))
			assert.ErrorIs(t, err, ErrMissingIdentity)
		})
	}
}

func TestNormalizeNumericHex(t *testing.T) {
	ac, err := NewNormalizer(NormalizerOptions{}).Normalize(json.RawMessage(`{"hex":123456}`))
	require.NoError(t, err)
	assert.Equal(t, "123456", ac.Hex)
}

func TestNormalizeNotAnObject(t *testing.T) {
	_, err := NewNormalizer(NormalizerOptions{}).Normalize(json.RawMessage(`[1,2]`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingIdentity))
}

func TestNormalizeGroundAltitude(t *testing.T) {
	ac, err := NewNormalizer(NormalizerOptions{}).Normalize(json.RawMessage(`{"hex":"abc123","alt_baro":"ground","alt_geom":25}`))
	require.NoError(t, err)

	assert.True(t, ac.OnGround)
	assert.Nil(t, ac.AltBaro)
	assert.Equal(t, int64(25), *ac.AltGeom)
}

func TestNormalizeEmergency(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{})

	tests := []struct {
		name          string
		raw           string
		wantEmergency bool
		wantSpecial   string
	}{
		{name: "squawk 7700 without emergency field", raw: `{"hex":"a","squawk":"7700","emergency":null}`, wantEmergency: false, wantSpecial: "emergency"},
		{name: "general emergency", raw: `{"hex":"a","squawk":"1200","emergency":"general"}`, wantEmergency: true},
		{name: "none is not an emergency", raw: `{"hex":"a","emergency":"none"}`, wantEmergency: false},
		{name: "hijack squawk", raw: `{"hex":"a","squawk":"7500"}`, wantSpecial: "hijack"},
		{name: "numeric squawk", raw: `{"hex":"a","squawk":7600}`, wantSpecial: "radio failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac, err := n.Normalize(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmergency, ac.IsEmergency)
			assert.Equal(t, tt.wantSpecial, ac.SpecialSquawk())
		})
	}
}

func TestNormalizeFeederType(t *testing.T) {
	n := NewNormalizer(NormalizerOptions{})

	tests := []struct {
		raw  string
		want FeederType
	}{
		{raw: `{"hex":"a","t":"TWR"}`, want: FeederTower},
		{raw: `{"hex":"a","t":"GND"}`, want: FeederGroundStation},
		{raw: `{"hex":"a"}`, want: FeederGroundVehicle},
		{raw: `{"hex":"a","t":"A320"}`, want: FeederAircraft},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			ac, err := n.Normalize(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ac.Feeder)
		})
	}
}

func TestNormalizeMilitaryPolicy(t *testing.T) {
	raw := json.RawMessage(`{"hex":"ae1234","flight":"RCH123 ","t":"C17"}`)

	ac, err := NewNormalizer(NormalizerOptions{}).Normalize(raw)
	require.NoError(t, err)
	assert.True(t, ac.IsMilitary)

	never := MilitaryPolicyFunc(func(Aircraft) bool { return false })
	ac, err = NewNormalizer(NormalizerOptions{Military: never}).Normalize(raw)
	require.NoError(t, err)
	assert.False(t, ac.IsMilitary)
}

func TestNormalizeUnsafeInteger(t *testing.T) {
	raw := json.RawMessage(`{"hex":"abc","alt_baro":99999999999999999999}`)

	_, err := NewNormalizer(NormalizerOptions{}).Normalize(raw)
	assert.ErrorIs(t, err, ErrUnsafeInteger)

	ac, err := NewNormalizer(NormalizerOptions{SafeIntegerLimit: -1}).Normalize(raw)
	require.NoError(t, err)
	assert.Nil(t, ac.AltBaro, "a literal beyond int64 decodes as float and cannot coerce to an int")
}

func TestSanitizeUnsafeIntegers(t *testing.T) {
	out, err := sanitizeUnsafeIntegers(json.RawMessage(`{"hex":"abc","alt_baro":99999999999999999999,"gs":450}`), DefaultSafeIntegerLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hex":"abc","alt_baro":"99999999999999999999","gs":450}`, string(out))
}
