package reloop

// Role identifies the speaker of a [Message].
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single role-tagged entry of a [Conversation].
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// SystemMessage returns a system-role Message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a user-role Message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant-role Message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage returns a tool-role Message.
func ToolMessage(content string) Message {
	return Message{Role: RoleTool, Content: content}
}

// Conversation is the ordered, append-only chat history owned by one agent loop invocation.
//
// The whole history is replayed on every generation call; nothing is summarized or windowed.
// Messages are stored by value and [Conversation.Messages] hands out a copy, so a message
// cannot change after it has been appended and two conversations never share messages.
//
// A Conversation is not safe for concurrent use. The agent loop is strictly sequential, so it
// never needs to be.
type Conversation struct {
	messages []Message
}

// NewConversation creates a Conversation seeded with the system prompt followed by the
// triggering user prompt.
func NewConversation(systemPrompt, userPrompt string) *Conversation {
	return &Conversation{
		messages: []Message{
			SystemMessage(systemPrompt),
			UserMessage(userPrompt),
		},
	}
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	c.messages = append(c.messages, msgs...)
}

// Messages returns a copy of the conversation's messages in order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recently appended message.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}
