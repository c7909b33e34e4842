package adsb

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// Category is a logical source of aircraft data. Regular is a geographic
// query; the others are fixed endpoints that return a special-handling set
// regardless of location.
type Category uint8

const (
	Regular Category = iota
	PIA
	Military
	LADD

	numCategories
)

// MaxRegularRadiusNM is the largest radius the geographic endpoint accepts.
const MaxRegularRadiusNM = 250.0

var categoryNames = [numCategories]string{
	Regular:  "regular",
	PIA:      "pia",
	Military: "mil",
	LADD:     "ladd",
}

// String returns the config/API name of the category.
func (c Category) String() string {
	if c < numCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// ParseCategory accepts the names produced by String plus a few aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular", "point", "geo":
		return Regular, nil
	case "pia":
		return PIA, nil
	case "mil", "military":
		return Military, nil
	case "ladd":
		return LADD, nil
	}
	return 0, fmt.Errorf("unknown source category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// AllCategories lists every category in declaration order.
func AllCategories() []Category {
	return []Category{Regular, PIA, Military, LADD}
}

// CategorySet is a set of categories. The zero value is empty.
type CategorySet uint8

// NewCategorySet builds a set from the given categories.
func NewCategorySet(cats ...Category) CategorySet {
	var s CategorySet
	for _, c := range cats {
		s = s.With(c)
	}
	return s
}

// With returns s plus c.
func (s CategorySet) With(c Category) CategorySet {
	if c >= numCategories {
		return s
	}
	return s | 1<<c
}

// Without returns s minus c.
func (s CategorySet) Without(c Category) CategorySet {
	return s &^ (1 << c)
}

// Has reports whether c is in s.
func (s CategorySet) Has(c Category) bool {
	return c < numCategories && s&(1<<c) != 0
}

// Empty reports whether no category is enabled.
func (s CategorySet) Empty() bool { return s == 0 }

// Len returns the number of categories in s.
func (s CategorySet) Len() int { return bits.OnesCount8(uint8(s)) }

// OrDefault returns s, or {Regular} when s is empty. An empty toggle set
// would otherwise leave the map with nothing to show.
func (s CategorySet) OrDefault() CategorySet {
	if s.Empty() {
		return NewCategorySet(Regular)
	}
	return s
}

// Categories lists the members of s in declaration order.
func (s CategorySet) Categories() []Category {
	out := make([]Category, 0, s.Len())
	for _, c := range AllCategories() {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String renders the set as "regular,mil".
func (s CategorySet) String() string {
	names := make([]string, 0, s.Len())
	for _, c := range s.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ",")
}

// ParseCategorySet parses a comma separated list of category names.
func ParseCategorySet(s string) (CategorySet, error) {
	var set CategorySet
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return 0, err
		}
		set = set.With(c)
	}
	return set, nil
}

// MarshalJSON encodes the set as a list of names.
func (s CategorySet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, s.Len())
	for _, c := range s.Categories() {
		names = append(names, c.String())
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes a list of names.
func (s *CategorySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, err := ParseCategorySet(strings.Join(names, ","))
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// Query is one request against a category endpoint. Lat, Lon and RadiusNM
// are only meaningful for Regular.
type Query struct {
	Category Category
	Lat      float64
	Lon      float64
	RadiusNM float64
}

// Path returns the request path relative to the API base URL.
func (q Query) Path() string {
	switch q.Category {
	case PIA:
		return "/pia"
	case Military:
		return "/mil"
	case LADD:
		return "/ladd"
	default:
		radius := q.RadiusNM
		if radius > MaxRegularRadiusNM {
			radius = MaxRegularRadiusNM
		}
		if radius < 1 {
			radius = 1
		}
		return fmt.Sprintf("/lat/%.4f/lon/%.4f/dist/%.0f", q.Lat, q.Lon, radius)
	}
}
