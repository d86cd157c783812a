package hermes

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/toolcall"
	"github.com/rickchristie/reloop/toolset"
	"github.com/rickchristie/reloop/transcript"
)

// LoopData implements reloop.LoopData for the Hermes agent loop.
type LoopData struct {
	task         string
	conversation *reloop.Conversation
}

// NewLoopData creates a new LoopData whose conversation is seeded with the system prompt and
// the task as the first user message.
func NewLoopData(systemPrompt, task string) *LoopData {
	return &LoopData{
		task:         task,
		conversation: reloop.NewConversation(systemPrompt, task),
	}
}

// GetTask returns the user prompt that started the loop.
func (d *LoopData) GetTask() string {
	return d.task
}

// GetConversation returns the conversation owned by this invocation.
func (d *LoopData) GetConversation() *reloop.Conversation {
	return d.conversation
}

// Compile-time check that LoopData implements reloop.LoopData.
var _ reloop.LoopData = (*LoopData)(nil)

// ----------------------------------------------------------------------------
// Malformed tool calls
// ----------------------------------------------------------------------------

// MalformedCallPolicy decides what happens when the model emits a <tool_call> whose payload
// cannot be parsed.
type MalformedCallPolicy string

const (
	// MalformedCallFeedback appends the generated text and a corrective tool message, then
	// lets the model try again. This is the default.
	MalformedCallFeedback MalformedCallPolicy = "feedback"

	// MalformedCallFatal terminates the invocation with the parse error.
	MalformedCallFatal MalformedCallPolicy = "fatal"
)

// ParseMalformedCallPolicy parses a policy name. The empty string selects the default.
func ParseMalformedCallPolicy(s string) (MalformedCallPolicy, error) {
	switch MalformedCallPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MalformedCallFeedback:
		return MalformedCallFeedback, nil
	case MalformedCallFatal:
		return MalformedCallFatal, nil
	default:
		return "", fmt.Errorf("unknown malformed call policy %q (want %q or %q)",
			s, MalformedCallFeedback, MalformedCallFatal)
	}
}

// ----------------------------------------------------------------------------
// Agent - Hermes AgentLoop Implementation
// ----------------------------------------------------------------------------

// Agent implements a single-call function calling loop over a text completion backend.
// Flow: Generate -> Extract -> Dispatch -> Append -> Repeat until the model answers without
// calling a tool.
//
// The whole conversation is rendered as a ChatML transcript on every turn. The system prompt
// tells the model how to call tools in the Hermes format and lists the tools of the ToolSet.
// Templates can be customized via WithSystemTemplate() for full control over prompting.
type Agent struct {
	completer          reloop.Completer
	tools              reloop.ToolSet
	transcript         *transcript.ChatML
	format             *toolcall.Hermes
	systemTemplate     *template.Template
	behaviorAndContext string
	timeProvider       reloop.TimeProvider
	malformedPolicy    MalformedCallPolicy
}

// NewAgent creates a new Agent with the given completer and default settings.
// Defaults:
//   - ToolSet: an empty toolset.Registry
//   - Transcript: transcript.NewChatML()
//   - Format: toolcall.NewHermes()
//   - TimeProvider: reloop.NewDefaultTimeProvider()
//   - SystemTemplate: DefaultSystemTemplate
//   - MalformedCallPolicy: MalformedCallFeedback
func NewAgent(completer reloop.Completer) *Agent {
	return &Agent{
		completer:       completer,
		tools:           toolset.New(),
		transcript:      transcript.NewChatML(),
		format:          toolcall.NewHermes(),
		systemTemplate:  DefaultSystemTemplate,
		timeProvider:    reloop.NewDefaultTimeProvider(),
		malformedPolicy: MalformedCallFeedback,
	}
}

// WithToolSet sets the tools available to the model.
// The ToolSet is read on every turn, so it may be populated after the Agent is created.
func (a *Agent) WithToolSet(tools reloop.ToolSet) *Agent {
	a.tools = tools
	return a
}

// WithBehaviorAndContext sets behavior instructions and context to include in the system prompt.
// This is added to the default instructions, not a replacement.
// Use WithSystemTemplate() to completely replace the system prompt template.
func (a *Agent) WithBehaviorAndContext(prompt string) *Agent {
	a.behaviorAndContext = prompt
	return a
}

// WithSystemTemplate sets a custom system prompt template.
// See DefaultSystemTemplate for the expected template structure.
func (a *Agent) WithSystemTemplate(tmpl *template.Template) *Agent {
	a.systemTemplate = tmpl
	return a
}

// WithSystemTemplateString sets a custom system prompt template from a string.
// The string is parsed as a Go text/template with access to SystemPromptData fields:
//   - {{.BehaviorAndContext}} - behavior instructions from WithBehaviorAndContext()
//   - {{.ToolsPrompt}} - the tool catalog
//   - {{.Guidance}} - how to emit a tool call
//
// Returns error if the template string is invalid.
func (a *Agent) WithSystemTemplateString(tmplStr string) (*Agent, error) {
	tmpl, err := template.New("hermes_system").Parse(tmplStr)
	if err != nil {
		return a, fmt.Errorf("failed to parse template: %w", err)
	}
	a.systemTemplate = tmpl
	return a, nil
}

// WithLeadIn sets the phrase the assistant turn is primed with.
func (a *Agent) WithLeadIn(leadIn string) *Agent {
	a.transcript = a.transcript.WithLeadIn(leadIn)
	return a
}

// WithTimeProvider sets the time provider.
// Use this to inject a mock time provider for testing.
func (a *Agent) WithTimeProvider(tp reloop.TimeProvider) *Agent {
	a.timeProvider = tp
	return a
}

// WithMalformedCallPolicy sets what happens when a tool call cannot be parsed.
func (a *Agent) WithMalformedCallPolicy(policy MalformedCallPolicy) *Agent {
	a.malformedPolicy = policy
	return a
}

// TimeProvider returns the current time provider.
func (a *Agent) TimeProvider() reloop.TimeProvider {
	return a.timeProvider
}

// SystemPrompt renders the system prompt for the current ToolSet.
func (a *Agent) SystemPrompt() (string, error) {
	var descriptors []reloop.ToolDescriptor
	if a.tools != nil {
		descriptors = a.tools.Descriptors()
	}
	toolsPrompt, err := a.format.AvailableToolsPrompt(descriptors)
	if err != nil {
		return "", err
	}

	systemPrompt, err := ExecuteTemplate(a.systemTemplate, SystemPromptData{
		BehaviorAndContext: a.processTemplateString(a.behaviorAndContext),
		ToolsPrompt:        toolsPrompt,
		Guidance:           a.format.Guidance(),
		Time:               a.timeProvider,
	})
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return systemPrompt, nil
}

// Next executes one turn of the loop:
//  1. Render the conversation and call the completer
//  2. Extract at most one tool call from the generated text
//  3. No call: the trimmed text is the final answer, terminate
//  4. Call: append the assistant text, dispatch the call, append exactly one tool message and
//     continue
//
// Unknown tools and tool failures are fed back to the model as tool messages. Backend errors
// are returned and end the invocation.
func (a *Agent) Next(execCtx *reloop.ExecutionContext) (*reloop.AgentLoopResult, error) {
	ctx := execCtx.Context()
	conv := execCtx.Data().GetConversation()

	prompt := a.transcript.Render(conv)
	execCtx.FireBeforeGeneration(reloop.BeforeGenerationEvent{Prompt: prompt})
	start := time.Now()
	completion, err := a.completer.Complete(ctx, prompt)
	execCtx.FireAfterGeneration(reloop.AfterGenerationEvent{
		Prompt:     prompt,
		Completion: completion,
		Duration:   time.Since(start),
		Error:      err,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	extraction, err := a.format.Extract(completion.Text)
	if err != nil {
		return a.handleMalformedCall(execCtx, extraction, err)
	}

	if extraction.Call == nil {
		conv.Append(reloop.AssistantMessage(extraction.Text))
		return &reloop.AgentLoopResult{
			Action: reloop.LATerminate,
			Result: extraction.Text,
		}, nil
	}

	call := extraction.Call
	conv.Append(reloop.AssistantMessage(extraction.Text))

	execCtx.FireBeforeToolCall(reloop.BeforeToolCallEvent{Call: call})
	start = time.Now()
	result, invokeErr := a.invoke(execCtx, call)
	execCtx.FireAfterToolCall(reloop.AfterToolCallEvent{
		Call:     call,
		Result:   result,
		Duration: time.Since(start),
		Error:    invokeErr,
	})

	switch {
	case invokeErr == nil:
		conv.Append(reloop.ToolMessage(a.format.FormatResult(result)))
	case errors.Is(invokeErr, reloop.ErrUnknownTool):
		conv.Append(reloop.ToolMessage(a.format.FormatUnknownTool(call.Name)))
	default:
		conv.Append(reloop.ToolMessage(a.format.FormatResult(toolset.ErrorResult(invokeErr))))
		return nil, fmt.Errorf("tool %q: %w", call.Name, invokeErr)
	}

	return &reloop.AgentLoopResult{
		Action: reloop.LAContinue,
		Call:   call,
	}, nil
}

func (a *Agent) invoke(
	execCtx *reloop.ExecutionContext,
	call *reloop.ToolCall,
) (reloop.ToolResult, error) {
	if a.tools == nil {
		return nil, &toolset.UnknownToolError{Name: call.Name}
	}
	return a.tools.Invoke(execCtx.Context(), call)
}

func (a *Agent) handleMalformedCall(
	execCtx *reloop.ExecutionContext,
	extraction *toolcall.Extraction,
	err error,
) (*reloop.AgentLoopResult, error) {
	execCtx.FireMalformedToolCall(reloop.MalformedToolCallEvent{
		Content: extraction.Text,
		Error:   err,
	})
	if a.malformedPolicy == MalformedCallFatal {
		return nil, err
	}

	cause := err
	var malformed *toolcall.MalformedCallError
	if errors.As(err, &malformed) {
		cause = malformed.Err
	}
	execCtx.Data().GetConversation().Append(
		reloop.AssistantMessage(extraction.Text),
		reloop.ToolMessage(a.format.FormatMalformedCall(cause)),
	)
	return &reloop.AgentLoopResult{Action: reloop.LAContinue}, nil
}

// processTemplateString processes a string as a template.
// This allows users to use template variables like {{.Time.Today}} in their prompts.
func (a *Agent) processTemplateString(input string) string {
	if !strings.Contains(input, "{{") {
		return input
	}

	tmpl, err := template.New("template_string").Parse(input)
	if err != nil {
		return input
	}

	data := struct {
		Time reloop.TimeProvider
	}{
		Time: a.timeProvider,
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return input
	}
	return buf.String()
}

// Compile-time check that Agent implements reloop.AgentLoop.
var _ reloop.AgentLoop = (*Agent)(nil)
