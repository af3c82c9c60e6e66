package mailer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeJobPayload(t *testing.T) {
	job := CodeJob{
		UserID:      9,
		Provider:    "Phone Code",
		Channel:     ChannelSMS,
		Destination: "+15550100",
		Text:        RenderCode("Your security code is {code}", "012345"),
	}
	b, err := json.Marshal(job)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Your security code is 012345", got["text"])
	assert.Equal(t, "sms", got["channel"])
	_, hasSubject := got["subject"]
	assert.False(t, hasSubject)
}
