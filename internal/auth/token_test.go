package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	tok, err := Issue("event-portal", "key", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	sid, err := Parse(tok.Value, "key", "event-portal")
	require.NoError(t, err)
	assert.Equal(t, tok.SessionID, sid)
}

func TestParseRejects(t *testing.T) {
	tok, err := Issue("event-portal", "key", time.Hour)
	require.NoError(t, err)

	_, err = Parse(tok.Value, "other-key", "event-portal")
	assert.Error(t, err)

	_, err = Parse(tok.Value, "key", "someone-else")
	assert.Error(t, err)

	_, err = Parse(tok.Value+"x", "key", "event-portal")
	assert.Error(t, err)

	expired, err := Issue("event-portal", "key", -time.Minute)
	require.NoError(t, err)
	_, err = Parse(expired.Value, "key", "event-portal")
	assert.Error(t, err)
}
