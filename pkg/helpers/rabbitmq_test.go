package helpers

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONMessage(t *testing.T) {
	msg, err := NewJSONMessage("identity.security_code", map[string]any{"user_id": 9})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "identity.security_code", msg.Type)
	assert.NotEmpty(t, msg.MessageId)
	assert.False(t, msg.Timestamp.IsZero())
	assert.JSONEq(t, `{"user_id":9}`, string(msg.Body))

	other, err := NewJSONMessage("identity.security_code", nil)
	require.NoError(t, err)
	assert.NotEqual(t, msg.MessageId, other.MessageId)

	_, err = NewJSONMessage("x", make(chan int))
	assert.Error(t, err)
}
