package reloop

// AgentLoop is responsible for one turn of the conversation:
//  1. Rendering the conversation into the prompt sent to the completion backend.
//  2. Calling the backend with the rendered prompt.
//  3. Looking for a tool-call directive in the generated text and dispatching it.
//  4. Deciding whether to continue with another turn or terminate with the final answer.
//
// The executor calls [AgentLoop.Next] repeatedly until it returns [LATerminate], an error, or a
// limit is reached.
type AgentLoop interface {
	// Next performs one turn of the agent loop. The ExecutionContext gives access to the
	// LoopData via execCtx.Data() and to the hooks via its Fire methods.
	Next(execCtx *ExecutionContext) (*AgentLoopResult, error)
}

// LoopData is the state carried through every AgentLoop turn of one invocation.
type LoopData interface {
	// GetTask returns the user prompt that started the loop.
	GetTask() string

	// GetConversation returns the conversation owned by this invocation.
	GetConversation() *Conversation
}

type LoopAction string

const (
	LAContinue  LoopAction = "c"
	LATerminate LoopAction = "t"
)

type AgentLoopResult struct {
	// Action indicates whether to continue or terminate the loop.
	Action LoopAction

	// Call is the tool call dispatched during this turn. Only set when Action is [LAContinue]
	// and the turn produced a call.
	Call *ToolCall

	// Result is only set when Action is [LATerminate]. It is the trimmed final answer.
	Result string
}
