// internal/browser/context_utils.go
package browser

import "context"

// CombineContext creates a context that is canceled when either parent is
// canceled. The derived context keeps parentCtx's values, which matters because
// chromedp stores its target handle there.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
