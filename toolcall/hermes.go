// Package toolcall implements the Hermes tool-calling wire format: the tool catalog shown to
// the model, the extraction of a single <tool_call> directive from generated text, and the
// <tool_response> messages fed back to it.
package toolcall

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rickchristie/reloop"
)

const (
	CallStart     = "<tool_call>"
	CallEnd       = "</tool_call>"
	ResponseStart = "<tool_response>"
	ResponseEnd   = "</tool_response>"
)

var (
	// ErrMissingName is returned when a tool call payload has no "name".
	ErrMissingName = errors.New(`missing "name"`)

	// ErrArgumentsNotObject is returned when "arguments" is present but not a JSON object.
	ErrArgumentsNotObject = errors.New(`"arguments" must be an object`)
)

// MalformedCallError is returned when the text between the tool-call markers cannot be parsed.
// It matches [reloop.ErrMalformedToolCall] via errors.Is.
type MalformedCallError struct {
	// Payload is the raw text found between the markers.
	Payload string
	Err     error
}

func (e *MalformedCallError) Error() string {
	return fmt.Sprintf("%s: %v", reloop.ErrMalformedToolCall, e.Err)
}

func (e *MalformedCallError) Unwrap() []error {
	return []error{reloop.ErrMalformedToolCall, e.Err}
}

// Extraction is the result of scanning generated text for a tool call.
type Extraction struct {
	// Text is the trimmed generated text, truncated so that it holds at most one call-start
	// marker. This is what gets appended to the conversation as the assistant message.
	Text string

	// Cleaned is the text before the call-start marker, trimmed. Equal to Text when there is
	// no call.
	Cleaned string

	// Call is the parsed tool call, or nil when Text is a final answer.
	Call *reloop.ToolCall
}

// Hermes extracts and formats tool calls in the Hermes function-calling format:
//
//	<tool_call>
//	{"arguments": {"query": "Go"}, "name": "search_wikipedia"}
//	</tool_call>
//
// Hermes is stateless and safe for concurrent use.
type Hermes struct{}

// NewHermes creates a new Hermes tool-call format.
func NewHermes() *Hermes {
	return &Hermes{}
}

// Extract scans generated text for a single tool call.
//
//  1. The text is trimmed.
//  2. While it contains more than one call-start marker, it is truncated at the last one, so
//     only the first call survives. Models sometimes hallucinate a second call reasoning about
//     "what if"; only the first is authoritative.
//  3. If a marker remains, the payload between it and the call-end marker is parsed. A
//     missing call-end marker is tolerated since backends often stop right before it.
//  4. No marker means the text is the final answer.
//
// A payload that is not a JSON object with a non-empty "name" returns the Extraction (with a
// nil Call) together with a *MalformedCallError.
func (h *Hermes) Extract(generated string) (*Extraction, error) {
	text := strings.TrimSpace(generated)
	for strings.Count(text, CallStart) > 1 {
		text = strings.TrimSpace(text[:strings.LastIndex(text, CallStart)])
	}

	start := strings.Index(text, CallStart)
	if start < 0 {
		return &Extraction{Text: text, Cleaned: text}, nil
	}

	result := &Extraction{
		Text:    text,
		Cleaned: strings.TrimSpace(text[:start]),
	}

	payload := text[start+len(CallStart):]
	if end := strings.Index(payload, CallEnd); end >= 0 {
		payload = payload[:end]
	}
	payload = strings.TrimSpace(payload)

	call, err := parseCall(payload)
	if err != nil {
		return result, &MalformedCallError{Payload: payload, Err: err}
	}
	result.Call = call
	return result, nil
}

func parseCall(payload string) (*reloop.ToolCall, error) {
	var raw struct {
		Name      *string         `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}
	if raw.Name == nil || strings.TrimSpace(*raw.Name) == "" {
		return nil, ErrMissingName
	}

	args := map[string]any{}
	if len(raw.Arguments) > 0 && string(raw.Arguments) != "null" {
		if err := json.Unmarshal(raw.Arguments, &args); err != nil {
			return nil, ErrArgumentsNotObject
		}
	}

	return &reloop.ToolCall{Name: *raw.Name, Arguments: args}, nil
}

// -----------------------------------------------------------------------------
// Prompt rendering
// -----------------------------------------------------------------------------

type functionDescriptor struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// AvailableToolsPrompt renders the tool catalog as a JSON array inside <tools></tools> tags.
// Each tool is described as {"type":"function","function":{"name","description","parameters"}}.
func (h *Hermes) AvailableToolsPrompt(descriptors []reloop.ToolDescriptor) (string, error) {
	functions := make([]functionDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		functions = append(functions, functionDescriptor{
			Type: "function",
			Function: functionSpec{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}

	data, err := json.Marshal(functions)
	if err != nil {
		return "", fmt.Errorf("marshal tool catalog: %w", err)
	}
	return "<tools>" + string(data) + "</tools>", nil
}

// Guidance returns the instructions explaining how to call a tool.
func (h *Hermes) Guidance() string {
	return "For each function call return a json object with function name and arguments " +
		"within <tool_call></tool_call> XML tags as follows:\n" +
		CallStart + "\n" +
		`{"arguments": <args-dict>, "name": <function-name>}` + "\n" +
		CallEnd
}

// -----------------------------------------------------------------------------
// Tool responses
// -----------------------------------------------------------------------------

// FormatResult wraps a tool result in <tool_response> tags. The result is JSON-encoded, so a
// string result appears quoted.
func (h *Hermes) FormatResult(result reloop.ToolResult) string {
	encoded, err := encodeResult(result)
	if err != nil {
		encoded, _ = encodeResult("Error: failed to encode tool result: " + err.Error())
	}
	return wrapResponse(encoded)
}

// encodeResult is json.Marshal without HTML escaping, so "<" and "&" reach the model as is.
func encodeResult(result reloop.ToolResult) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// FormatUnknownTool returns the corrective response sent when the model calls a tool that
// does not exist. It names the tool and nudges the model to recover on its own.
func (h *Hermes) FormatUnknownTool(name string) string {
	return wrapResponse(fmt.Sprintf("Error: Function %q does not exist.\n", name) +
		"Try something else or ask the user for help.\n" +
		"Don't tell the user about the error unless absolutely necessary.\n" +
		"Solve this mistake by thinking step by step.")
}

// FormatMalformedCall returns the corrective response sent when a tool call could not be
// parsed.
func (h *Hermes) FormatMalformedCall(err error) string {
	return wrapResponse(fmt.Sprintf("Error: Could not parse the function call: %v.\n", err) +
		"Return exactly one json object with \"name\" and \"arguments\" within " +
		"<tool_call></tool_call> XML tags.\n" +
		"Don't tell the user about the error unless absolutely necessary.\n" +
		"Solve this mistake by thinking step by step.")
}

func wrapResponse(content string) string {
	return ResponseStart + "\n" + content + "\n" + ResponseEnd
}
