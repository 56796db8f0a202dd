// Package generate is the boundary to the external text-generation service.
//
// The engine only ever sees the Completer interface: a role-tagged message
// list in, either one complete text or a stream of partial chunks out.
// Transport, auth, and model identity live behind the adapter.
package generate

import "context"

// Role tags a message in the request list.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the request list.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FailureContent is the terminal content written into the target block when
// a generation call rejects or errors mid-stream.
const FailureContent = "failed to generate, please retry"

// Completer produces text for a message list. Stream calls onChunk for each
// partial text fragment as it arrives; returning an error from onChunk
// aborts the stream.
type Completer interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
	Stream(ctx context.Context, msgs []Message, onChunk func(chunk string) error) error
}
