// Package hermes implements a single-call function calling agent loop over a raw text
// completion backend.
//
// # Overview
//
// The model sees the whole conversation rendered as a ChatML transcript and may answer with
// plain text or with one tool call in the Hermes format:
//
//	I need the current time first.
//	<tool_call>
//	{"arguments": {}, "name": "get_current_time"}
//	</tool_call>
//
// Each turn generates once. When the text holds a tool call, the agent appends the generated
// text as an assistant message, dispatches the call and appends exactly one tool message with
// the result, then continues. Text without a tool call is the final answer.
//
// # Agent Loop Behavior
//
// ## 1. Only The First Call Counts
//
// Models sometimes keep going after their first call and speculate about what the next call
// would be. Everything from the second <tool_call> marker on is cut before parsing, and the
// truncated text is what gets stored in the conversation.
//
// ## 2. Unknown Tools Are Recoverable
//
// A call to a tool that is not registered never fails the invocation. The model receives a
// tool message naming the tool and asking it to try something else.
//
// ## 3. Malformed Calls Follow A Policy
//
// A <tool_call> whose payload is not valid JSON, or has no "name", is handled according to
// the [MalformedCallPolicy]. [MalformedCallFeedback] (the default) tells the model what went
// wrong and lets it retry. [MalformedCallFatal] ends the invocation with the error.
//
// ## 4. Backend Errors Are Fatal
//
// A failed generation is returned from Next and the executor terminates the invocation with
// [reloop.TerminationError]. There is no retry.
//
// # Delegation
//
// The [Runner] starts invocations from a prompt. The delegate_task tool calls back into
// [Runner.RunAt] one level deeper, which gives the sub-task a fresh conversation while the
// parent waits. The depth limit is enforced by the executor before the first turn.
package hermes
