package mailer

import "strings"

// CodeJob is the JSON payload put on the RabbitMQ queue for delivering a
// two-factor security code. Channel is "sms" or "email"; Subject is only set
// for e-mail.
type CodeJob struct {
	UserID      int64  `json:"user_id"`
	Provider    string `json:"provider"`
	Channel     string `json:"channel"`
	Destination string `json:"destination"`
	Subject     string `json:"subject,omitempty"`
	Text        string `json:"text"`
}

// CodeJobType tags CodeJob messages on the queue.
const CodeJobType = "identity.security_code"

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// RenderCode fills the "{code}" placeholder of format.
func RenderCode(format, code string) string {
	return strings.ReplaceAll(format, "{code}", code)
}
