package uuid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestID(t *testing.T) {
	s := NewRequestID()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, NewRequestID(), s)
}

func TestUUID7IsTimeOrdered(t *testing.T) {
	first := UUID7()
	time.Sleep(2 * time.Millisecond)
	second := UUID7()
	assert.Equal(t, uuid.Version(7), first.Version())
	assert.Less(t, first.String(), second.String())
}
