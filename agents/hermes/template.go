package hermes

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/rickchristie/reloop"
)

//go:embed system.tmpl
var systemTemplateContent string

// SystemPromptData contains the data passed to the system prompt template.
type SystemPromptData struct {
	// BehaviorAndContext contains behavior instructions and context provided by the user.
	BehaviorAndContext string

	// ToolsPrompt is the tool catalog, a JSON array inside <tools></tools> tags.
	ToolsPrompt string

	// Guidance explains how to emit a <tool_call>.
	Guidance string

	// Time provides access to time-related functions in templates.
	// Use {{.Time.Today}}, {{.Time.Weekday}}, {{.Time.Format "2006-01-02"}}, etc.
	Time reloop.TimeProvider
}

// DefaultSystemTemplate is the default template for the system prompt. It tells the model to
// call one function at a time and lists the available tools.
//
// The template file is located at agents/hermes/system.tmpl.
// Users can replace this template via Agent.WithSystemTemplate().
var DefaultSystemTemplate = template.Must(
	template.New("hermes_system").Parse(systemTemplateContent),
)

// ExecuteTemplate executes a template with the given data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data SystemPromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
