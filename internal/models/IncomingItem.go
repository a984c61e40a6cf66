package models

// IncomingItem is what the transport hands over for one posted message.
// At most one of Image, ForwardLink and Text is used, in that order of precedence.
type IncomingItem struct {
	Scope       string `json:"scope"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	MessageLink string `json:"message_link"`
	Text        string `json:"text"`
	ForwardLink string `json:"forward_link"`
	Image       []byte `json:"image"`
}

type OutcomeStatus string

const (
	OutcomeIgnored    OutcomeStatus = "ignored"
	OutcomeNew        OutcomeStatus = "new"
	OutcomeRepeat     OutcomeStatus = "repeat"
	OutcomeUnrecorded OutcomeStatus = "unrecorded"
)

// Outcome is returned to the caller for delivery. Matched is set when an image
// was resolved to an earlier, visually similar one.
type Outcome struct {
	Status    OutcomeStatus     `json:"status"`
	Scope     string            `json:"scope"`
	Identity  string            `json:"identity,omitempty"`
	Matched   string            `json:"matched,omitempty"`
	Record    *OccurrenceRecord `json:"record,omitempty"`
	UserCount int64             `json:"user_count,omitempty"`
	Reply     string            `json:"reply,omitempty"`
}
