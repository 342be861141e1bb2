// internal/capture/selectors.go
package capture

import "time"

// ConsentButtonSelector is the known id of the cookie-consent accept button.
// Its absence is not an error.
const ConsentButtonSelector = "#onetrust-accept-btn-handler"

// Probe is one selector strategy with its own timeout. Probes are tried in
// order; the first that matches wins. A linear fallback, not a ranking.
type Probe struct {
	Name     string
	Selector string
	Timeout  time.Duration
}

// SearchInputProbes returns the ordered strategies for locating the search box.
// The vendor's markup changes often, so we go from the most specific attribute
// match down to a generic class.
func SearchInputProbes(timeout time.Duration) []Probe {
	return []Probe{
		{Name: "aria-label", Selector: `input[aria-label="Search"]`, Timeout: timeout},
		{Name: "placeholder", Selector: `input[placeholder="Search by Artist, Event or Venue"]`, Timeout: timeout},
		{Name: "type-search", Selector: `input[type="search"]`, Timeout: timeout},
		{Name: "testid", Selector: `[data-testid="search-input"]`, Timeout: timeout},
		{Name: "class", Selector: `.search-input`, Timeout: timeout},
	}
}

// ResultProbes returns the ordered strategies for confirming that search
// results rendered. Failure to confirm is non-fatal; the capture proceeds
// optimistically.
func ResultProbes(timeout time.Duration) []Probe {
	return []Probe{
		{Name: "event-card", Selector: `[data-testid="event-card"]`, Timeout: timeout},
		{Name: "search-results", Selector: `[data-testid="search-results"]`, Timeout: timeout},
		{Name: "event-listing", Selector: `.event-listing`, Timeout: timeout},
		{Name: "search-results-class", Selector: `.search-results`, Timeout: timeout},
		{Name: "event-list", Selector: `.event-list`, Timeout: timeout},
		{Name: "event-prefix", Selector: `[class*="event-"]`, Timeout: timeout},
		{Name: "result-prefix", Selector: `[class*="result-"]`, Timeout: timeout},
	}
}
