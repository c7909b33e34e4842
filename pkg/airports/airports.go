// Package airports is a static, immutable airport directory. It is loaded
// once, either from the built-in table or from a JSON/YAML file, and never
// touches the network.
package airports

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
)

// ErrDuplicateAirport is returned by New when two entries share an ICAO code.
var ErrDuplicateAirport = errors.New("duplicate airport")

// Airport is one directory entry. ICAO is the identity.
type Airport struct {
	ICAO        string   `json:"icao" yaml:"icao"`
	IATA        string   `json:"iata,omitempty" yaml:"iata,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Latitude    float64  `json:"lat" yaml:"lat"`
	Longitude   float64  `json:"lon" yaml:"lon"`
	Country     string   `json:"country,omitempty" yaml:"country,omitempty"`
	ElevationFt *float64 `json:"elevation_ft,omitempty" yaml:"elevation_ft,omitempty"`
}

// Position returns the airport reference point.
func (a Airport) Position() coordinates.Geographic {
	return coordinates.Geographic{Latitude: a.Latitude, Longitude: a.Longitude}
}

// Nearby is an airport with its distance and bearing from a query point.
type Nearby struct {
	Airport
	DistanceNM float64 `json:"distance_nm"`
	Bearing    float64 `json:"bearing"`
}

// Directory is an immutable set of airports indexed by ICAO and IATA code.
type Directory struct {
	airports []Airport
	byICAO   map[string]int
	byIATA   map[string]int
}

// New builds a directory. Codes are upper-cased; duplicate or empty ICAO codes
// and out-of-range positions are rejected.
func New(list []Airport) (*Directory, error) {
	d := &Directory{
		airports: make([]Airport, 0, len(list)),
		byICAO:   make(map[string]int, len(list)),
		byIATA:   make(map[string]int, len(list)),
	}

	seen := make(map[string]struct{}, len(list))
	for _, a := range list {
		a.ICAO = strings.ToUpper(strings.TrimSpace(a.ICAO))
		a.IATA = strings.ToUpper(strings.TrimSpace(a.IATA))
		if a.ICAO == "" {
			return nil, fmt.Errorf("airport %q has no ICAO code", a.Name)
		}
		if _, dup := seen[a.ICAO]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAirport, a.ICAO)
		}
		seen[a.ICAO] = struct{}{}
		if err := a.Position().Validate(); err != nil {
			return nil, fmt.Errorf("airport %s: %w", a.ICAO, err)
		}
		d.airports = append(d.airports, a)
	}

	sort.Slice(d.airports, func(i, j int) bool { return d.airports[i].ICAO < d.airports[j].ICAO })
	for i, a := range d.airports {
		d.byICAO[a.ICAO] = i
		if a.IATA != "" {
			d.byIATA[a.IATA] = i
		}
	}

	return d, nil
}

// Default returns the built-in directory.
func Default() *Directory {
	d, err := New(builtin)
	if err != nil {
		panic(fmt.Sprintf("airports: built-in table invalid: %v", err))
	}
	return d
}

// LoadFile reads a directory from a JSON or YAML (.yaml/.yml) list of airports.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read airports file: %w", err)
	}

	var list []Airport
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &list)
	default:
		err = json.Unmarshal(data, &list)
	}
	if err != nil {
		return nil, fmt.Errorf("parse airports file: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("airports file is empty")
	}

	return New(list)
}

// All returns every airport ordered by ICAO code. The slice is a copy.
func (d *Directory) All() []Airport {
	out := make([]Airport, len(d.airports))
	copy(out, d.airports)
	return out
}

// Len returns the number of airports.
func (d *Directory) Len() int { return len(d.airports) }

// ByICAO looks up an airport by ICAO code, case-insensitively.
func (d *Directory) ByICAO(code string) (Airport, bool) {
	i, ok := d.byICAO[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Airport{}, false
	}
	return d.airports[i], true
}

// ByIATA looks up an airport by IATA code, case-insensitively.
func (d *Directory) ByIATA(code string) (Airport, bool) {
	i, ok := d.byIATA[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Airport{}, false
	}
	return d.airports[i], true
}

// Nearby returns airports within radiusNM of center, closest first.
func (d *Directory) Nearby(center coordinates.Geographic, radiusNM float64) []Nearby {
	var out []Nearby
	for _, a := range d.airports {
		dist := coordinates.DistanceNauticalMiles(center, a.Position())
		if dist > radiusNM {
			continue
		}
		out = append(out, Nearby{
			Airport:    a,
			DistanceNM: dist,
			Bearing:    coordinates.Bearing(center, a.Position()),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceNM != out[j].DistanceNM {
			return out[i].DistanceNM < out[j].DistanceNM
		}
		return out[i].ICAO < out[j].ICAO
	})
	return out
}
