// Package transcript renders a [reloop.Conversation] into the single flat prompt string a
// text-completion backend continues.
package transcript

import (
	"strings"

	"github.com/rickchristie/reloop"
)

const (
	// StartOfTurn opens a message block. It is immediately followed by the role.
	StartOfTurn = "<|im_start|>"

	// EndOfTurn closes a message block. It is also one of the default stop words, so the
	// backend halts at the end of its own turn.
	EndOfTurn = "<|im_end|>"

	// DefaultLeadIn is the phrase the assistant turn is primed with.
	DefaultLeadIn = "Okay, "
)

// ChatML renders conversations in the ChatML wire shape.
//
// Example output for a conversation [system("S"), user("U")]:
//
//	<|im_start|>system
//	S<|im_end|>
//	<|im_start|>user
//	U<|im_end|>
//	<|im_start|>assistant
//	Okay,
//
// The trailing assistant block is left open and primed with a short lead-in phrase, which
// steers the backend toward reasoning step by step before any tool call.
//
// ChatML is stateless after construction and safe for concurrent use.
type ChatML struct {
	leadIn string
}

// NewChatML creates a ChatML renderer with [DefaultLeadIn].
func NewChatML() *ChatML {
	return &ChatML{leadIn: DefaultLeadIn}
}

// WithLeadIn sets the phrase the assistant turn is primed with. An empty lead-in leaves the
// assistant turn open with no text.
func (c *ChatML) WithLeadIn(leadIn string) *ChatML {
	c.leadIn = leadIn
	return c
}

// LeadIn returns the configured lead-in phrase.
func (c *ChatML) LeadIn() string {
	return c.leadIn
}

// Render serializes the conversation, in order, followed by the primed assistant turn.
// Render is a pure function: identical conversations always produce identical text.
func (c *ChatML) Render(conv *reloop.Conversation) string {
	msgs := conv.Messages()
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, Block(msg))
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(blocks, "\n"))
	sb.WriteString("\n")
	sb.WriteString(StartOfTurn)
	sb.WriteString(string(reloop.RoleAssistant))
	sb.WriteString("\n")
	sb.WriteString(c.leadIn)
	return sb.String()
}

// Block renders a single message as a role-delimited block.
func Block(msg reloop.Message) string {
	return StartOfTurn + string(msg.Role) + "\n" + msg.Content + EndOfTurn
}
