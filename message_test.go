package reloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversation(t *testing.T) {
	conv := NewConversation("You are helpful.", "What time is it?")

	require.Equal(t, 2, conv.Len())
	msgs := conv.Messages()
	assert.Equal(t, SystemMessage("You are helpful."), msgs[0])
	assert.Equal(t, UserMessage("What time is it?"), msgs[1])
}

func TestConversation_Append(t *testing.T) {
	conv := NewConversation("s", "u")
	conv.Append(AssistantMessage("a"), ToolMessage("t"))

	last, ok := conv.Last()
	require.True(t, ok)
	assert.Equal(t, Message{Role: RoleTool, Content: "t"}, last)
	assert.Equal(t, []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool}, roles(conv))
}

func TestConversation_MessagesIsACopy(t *testing.T) {
	conv := NewConversation("s", "u")

	msgs := conv.Messages()
	msgs[1].Content = "changed"

	assert.Equal(t, "u", conv.Messages()[1].Content)
}

func TestConversation_Last_Empty(t *testing.T) {
	conv := &Conversation{}
	_, ok := conv.Last()
	assert.False(t, ok)
}

func roles(conv *Conversation) []Role {
	var out []Role
	for _, m := range conv.Messages() {
		out = append(out, m.Role)
	}
	return out
}
