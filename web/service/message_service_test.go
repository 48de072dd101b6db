package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageSink(t *testing.T) {
	db := setup(t)
	svc := NewMessageService(db)

	// Nothing is validated, not even the email format.
	msg, err := svc.Create("not-an-email", "hi", "just wanted to say hi")
	assert.NoError(t, err)
	assert.NotZero(t, msg.Id)

	count, err := svc.CountMessages()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
