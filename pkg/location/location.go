// Package location serves the static state/district reference data used by
// the hospital search dropdowns.
package location

import "sort"

var districtsByState = map[string][]string{
	"Jharkhand":   {"Ranchi", "Dhanbad", "Bokaro", "Jamshedpur", "Hazaribagh"},
	"Bihar":       {"Patna", "Gaya", "Bhagalpur", "Muzaffarpur", "Purnia"},
	"West Bengal": {"Kolkata", "Asansol", "Siliguri", "Durgapur"},
}

// States returns all known states in sorted order.
func States() []string {
	states := make([]string, 0, len(districtsByState))
	for s := range districtsByState {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// Districts returns the districts of a state, or an empty slice for an
// unknown state.
func Districts(state string) []string {
	districts := districtsByState[state]
	out := make([]string, len(districts))
	copy(out, districts)
	return out
}
