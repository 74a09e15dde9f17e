// internal/analytics/params.go
package analytics

// FilterAll is the sentinel accepted by the date and platform filters.
const FilterAll = "all"

// QueryParams is the flat parameter bag accepted by every analytics query.
type QueryParams struct {
	DateFilter     string   `json:"dateFilter"`
	PlatformFilter string   `json:"platformFilter"`
	Days           int      `json:"days,omitempty"`
	Competitors    []string `json:"competitors,omitempty"`
}

// Normalize clamps out-of-range values to their nearest valid equivalent
// instead of rejecting them. Empty filters behave as "all". Days is left
// untouched: zero means unset (the caller substitutes its default) while a
// negative length behaves as a zero-length window, so the two cases must
// stay distinguishable here.
func (p *QueryParams) Normalize() {
	if p.DateFilter == "" {
		p.DateFilter = FilterAll
	}
	if p.PlatformFilter == "" {
		p.PlatformFilter = FilterAll
	}
}
