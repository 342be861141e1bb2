// internal/snapshot/markdown.go
package snapshot

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// renderMarkdown converts the captured markup into a Markdown rendition.
func renderMarkdown(markup string) (string, error) {
	converter := md.NewConverter("", true, nil)
	rendition, err := converter.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return rendition, nil
}
