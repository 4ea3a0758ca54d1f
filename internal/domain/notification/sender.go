package notification

import "context"

// Message is one push payload delivered to a set of device tokens.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// SendReport is the per-token outcome of one send. Invalid marks tokens the
// provider no longer recognizes; callers prune those from the user's token
// list.
type SendReport struct {
	Token   string
	OK      bool
	Invalid bool
	Error   string
}

// Sender delivers push notifications. Delivery itself is an external
// collaborator; this core only consumes the per-token outcome.
type Sender interface {
	Send(ctx context.Context, tokens []string, msg Message) ([]SendReport, error)
}
