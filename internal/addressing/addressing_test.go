package addressing

import (
	"testing"

	"chain_chat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationID_OrderIndependent(t *testing.T) {
	a, err := model.ParseAccount("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	b, err := model.ParseAccount("0x2222222222222222222222222222222222222222")
	require.NoError(t, err)

	assert.Equal(t, ConversationID(a, b), ConversationID(b, a))
}

func TestConversationID_DistinctPairs(t *testing.T) {
	a, _ := model.ParseAccount("0x1111111111111111111111111111111111111111")
	b, _ := model.ParseAccount("0x2222222222222222222222222222222222222222")
	c, _ := model.ParseAccount("0x3333333333333333333333333333333333333333")

	ab := ConversationID(a, b)
	ac := ConversationID(a, c)
	bc := ConversationID(b, c)

	assert.NotEqual(t, ab, ac)
	assert.NotEqual(t, ab, bc)
	assert.NotEqual(t, ac, bc)
}

func TestConversationID_SelfConversation(t *testing.T) {
	a, _ := model.ParseAccount("0x1111111111111111111111111111111111111111")

	// Notes-to-self still gets a stable id.
	assert.Equal(t, ConversationID(a, a), ConversationID(a, a))
	assert.False(t, ConversationID(a, a).IsZero())
}
