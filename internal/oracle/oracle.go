package oracle

import "context"

// Client produces Oracle chat replies. Implementations wrap the
// upstream LLM service; prompt construction and model choice live
// entirely behind this seam.
type Client interface {
	// Reply answers a single user message.
	Reply(ctx context.Context, message string) (string, error)
}
