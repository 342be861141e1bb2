// internal/snapshot/summary_test.go
package snapshot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeCountsEventCards(t *testing.T) {
	markup := `<!DOCTYPE html>
<html>
<head><title> Adele Tickets | Ticketmaster </title></head>
<body>
  <div data-testid="search-results">
    <div data-testid="event-card">one</div>
    <div data-testid="event-card">two</div>
    <section data-testid="event-card">three</section>
  </div>
</body>
</html>`

	s, err := Summarize(strings.NewReader(markup))
	require.NoError(t, err)
	assert.Equal(t, "Adele Tickets | Ticketmaster", s.Title)
	assert.Equal(t, 3, s.EventCards)
}

func TestSummarizeHandlesPagesWithoutResults(t *testing.T) {
	s, err := Summarize(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, s.Title)
	assert.Zero(t, s.EventCards)
}

func TestSummarizeToleratesBrokenMarkup(t *testing.T) {
	// The parser is lenient; truncated tags still yield a document.
	s, err := Summarize(strings.NewReader(`<html><title>Half`))
	require.NoError(t, err)
	assert.Equal(t, "Half", s.Title)
}
