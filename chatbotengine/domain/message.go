package domain

// Caller identifies the party invoking the webhook endpoint, as seen by the
// HTTP layer. Token comes from the X-Webhook-Token header or the `token`
// query parameter.
type Caller struct {
	Token     string
	UserAgent string
	SourceIP  string
}

// InboundMessage is one customer message delivered by the provider webhook.
type InboundMessage struct {
	InstanceID string
	MessageID  string
	Sender     string // customer phone in provider format
	Text       string
	Type       string // text, image, document, ...
	Caller     Caller
}
