// internal/snapshot/summary.go
package snapshot

import (
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// Summary carries the quick look extracted from a saved snapshot.
type Summary struct {
	Title      string
	EventCards int
}

// Summarize parses HTML and reports the document title and the number of
// event-card containers the vendor rendered.
func Summarize(r io.Reader) (Summary, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "title" && s.Title == "" && n.FirstChild != nil {
				s.Title = strings.TrimSpace(n.FirstChild.Data)
			}
			for _, attr := range n.Attr {
				if attr.Key == "data-testid" && attr.Val == "event-card" {
					s.EventCards++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return s, nil
}

func summarizeFile(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	return Summarize(f)
}
