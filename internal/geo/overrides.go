package geo

import (
	"errors"
	"fmt"

	"weatherchart/internal/join"
)

// OverridesVersion identifies the recovery rule set below. Bump it whenever
// a rule is added, removed or changed.
const OverridesVersion = "geo-overrides/v1"

// ErrProxyNotFound is returned when an injected country's proxy has no
// source record.
var ErrProxyNotFound = errors.New("proxy country not found")

// Action is what a recovery rule does to a country.
type Action int

const (
	// Inject adds the country with literal coordinates and the proxy's
	// socioeconomic fields, replacing any existing record.
	Inject Action = iota + 1
	// Drop removes every record of the country.
	Drop
)

func (a Action) String() string {
	switch a {
	case Inject:
		return "inject"
	case Drop:
		return "drop"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Override is one manual recovery rule.
type Override struct {
	Country   string
	Action    Action
	Latitude  float64
	Longitude float64
	Proxy     string
	Reason    string
}

// Overrides is the recovery rule set applied by Process.
var Overrides = []Override{
	{
		Country:   "Hong Kong",
		Action:    Inject,
		Latitude:  22.3193,
		Longitude: 114.1694,
		Proxy:     "Singapore",
		Reason:    "heavily charted region with no source record; Singapore has a comparable profile",
	},
	{
		Country: "Taiwan",
		Action:  Drop,
		Reason:  "no reliable source record; its chart rows are lost at training-set assembly",
	},
}

// Applied reports what a rule changed.
type Applied struct {
	Rule    Override
	Removed int
}

// ApplyOverrides runs rules over recs in order and returns the new slice.
func ApplyOverrides(recs []Record, rules []Override) ([]Record, []Applied, error) {
	var applied []Applied
	for _, rule := range rules {
		key := join.Normalize(rule.Country)
		switch rule.Action {
		case Drop:
			var removed int
			recs, removed = without(recs, key)
			applied = append(applied, Applied{Rule: rule, Removed: removed})
		case Inject:
			proxy, ok := find(recs, join.Normalize(rule.Proxy))
			if !ok {
				return nil, applied, fmt.Errorf("%w: %s (for %s)", ErrProxyNotFound, rule.Proxy, rule.Country)
			}
			var removed int
			recs, removed = without(recs, key)
			recs = append(recs, Record{
				Country:            rule.Country,
				Latitude:           rule.Latitude,
				Longitude:          rule.Longitude,
				TertiaryEnrollment: proxy.TertiaryEnrollment,
				UnemploymentRate:   proxy.UnemploymentRate,
			})
			applied = append(applied, Applied{Rule: rule, Removed: removed})
		default:
			return nil, applied, fmt.Errorf("override %s: unknown action %v", rule.Country, rule.Action)
		}
	}
	return recs, applied, nil
}

func find(recs []Record, key string) (Record, bool) {
	for _, r := range recs {
		if join.Normalize(r.Country) == key {
			return r, true
		}
	}
	return Record{}, false
}

func without(recs []Record, key string) ([]Record, int) {
	out := recs[:0:0]
	removed := 0
	for _, r := range recs {
		if join.Normalize(r.Country) == key {
			removed++
			continue
		}
		out = append(out, r)
	}
	return out, removed
}
