package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventportal/internal/apperr"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "already_registered", Outcome(fmt.Errorf("x: %w", apperr.ErrAlreadyRegistered)))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
