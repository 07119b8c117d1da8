package geo

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"weatherchart/internal/csvio"
	"weatherchart/internal/join"
)

//go:embed hemisphere.csv
var hemisphereCSV string

// Hemisphere holds the coordinate signs of a country: -1 for south
// (latitude) or west (longitude), +1 otherwise.
type Hemisphere struct {
	Lat int
	Lon int
}

// HemisphereTable maps normalized country names and aliases to signs.
type HemisphereTable map[string]Hemisphere

// LoadHemispheres parses the embedded table.
func LoadHemispheres() (HemisphereTable, error) {
	return parseHemispheres(strings.NewReader(hemisphereCSV))
}

func parseHemispheres(src io.Reader) (HemisphereTable, error) {
	r, err := csvio.NewReader(src)
	if err != nil {
		return nil, err
	}
	idx, err := r.Require("country", "lat_sign", "lon_sign", "aliases")
	if err != nil {
		return nil, err
	}
	t := make(HemisphereTable)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		h := Hemisphere{Lat: sign(rec[idx[1]]), Lon: sign(rec[idx[2]])}
		if h.Lat == 0 || h.Lon == 0 {
			return nil, fmt.Errorf("hemisphere row %d: bad sign in %v", r.Rows(), rec)
		}
		t[join.Normalize(rec[idx[0]])] = h
		for _, a := range strings.Split(rec[idx[3]], "|") {
			if a = join.Normalize(a); a != "" {
				t[a] = h
			}
		}
	}
}

func sign(s string) int {
	switch strings.TrimSpace(s) {
	case "1", "+1":
		return 1
	case "-1":
		return -1
	}
	return 0
}

// Lookup returns the signs for a country name.
func (t HemisphereTable) Lookup(country string) (Hemisphere, bool) {
	h, ok := t[join.Normalize(country)]
	return h, ok
}
