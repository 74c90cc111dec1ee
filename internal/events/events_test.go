package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itxrex07/x/internal/models"
)

func TestEmitterDispatchesInRegistrationOrder(t *testing.T) {
	em := NewEmitter()
	var order []int

	em.On(MessageCreate, func(any) { order = append(order, 1) })
	em.On(MessageCreate, func(any) { order = append(order, 2) })

	em.Emit(MessageCreate, MessagePayload{})

	assert.Equal(t, []int{1, 2}, order)
}

func TestEmitterDeliversPayload(t *testing.T) {
	em := NewEmitter()
	var got any

	em.On(NewFollower, func(payload any) { got = payload })
	em.Emit(NewFollower, UserPayload{User: &models.User{PK: 5}})

	payload, ok := got.(UserPayload)
	require.True(t, ok)
	assert.Equal(t, int64(5), payload.User.PK)
}

func TestEmitterIgnoresUnregisteredNames(t *testing.T) {
	em := NewEmitter()
	assert.NotPanics(t, func() {
		em.Emit(CallStart, ChatPayload{})
	})
}

func TestAllNamesCoversVocabulary(t *testing.T) {
	assert.Len(t, AllNames, 18)
	seen := map[Name]struct{}{}
	for _, name := range AllNames {
		_, dup := seen[name]
		require.False(t, dup, "duplicate event name %s", name)
		seen[name] = struct{}{}
	}
}
