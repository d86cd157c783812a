// Package reloop drives a text-completion backend through a ReAct-style loop: build the
// transcript, generate a continuation, look for a tool call in the text, run the tool, feed
// the result back, and repeat until the model answers without calling a tool.
//
// The root package holds the shared types and interfaces. Implementations live in
// sub-packages:
//   - transcript: ChatML rendering of a [Conversation]
//   - toolcall: the Hermes <tool_call> wire format
//   - toolset: the tool registry with unknown-tool recovery
//   - models: llama.cpp and OpenAI-compatible [Completer] implementations
//   - agents/hermes: the agent loop and a Runner for plain prompts
//   - executor: drives an [AgentLoop], enforces [Limits] and fires hooks
//   - tools: search_wikipedia, get_current_time and delegate_task
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/rickchristie/reloop/agents/hermes"
//	    "github.com/rickchristie/reloop/executor"
//	    "github.com/rickchristie/reloop/models"
//	    "github.com/rickchristie/reloop/tools"
//	    "github.com/rickchristie/reloop/toolset"
//	)
//
//	func main() {
//	    // 1. Talk to a local llama.cpp server
//	    completer := models.NewLCGCompleter(models.NewLlamaCpp("http://127.0.0.1:8080"))
//
//	    // 2. Build the agent and the executor that drives it
//	    agent := hermes.NewAgent(completer)
//	    runner := hermes.NewRunner(agent, executor.New(agent))
//
//	    // 3. Register tools. delegate_task calls back into the runner.
//	    agent.WithToolSet(toolset.New().
//	        Register(tools.NewWikipedia()).
//	        Register(tools.NewClock()).
//	        Register(tools.NewDelegate(runner)))
//
//	    // 4. Ask
//	    answer, err := runner.Run(context.Background(), "Who is older, Cher or Madonna?")
//	    if err != nil {
//	        panic(err)
//	    }
//	    fmt.Println(answer)
//	}
//
// # Conversation
//
// A [Conversation] is the ordered list of [Message] values of one invocation. It starts with
// the system prompt and the user prompt, and only grows by appending. Delegated tasks get
// their own Conversation; nothing is shared with the parent except the final answer, which
// comes back as a single tool message.
//
// # Tools
//
// A [Tool] has a name, a description, a JSON-schema parameter declaration and a Call method
// taking the raw argument map. [NewToolFunc] decodes the arguments into a typed struct:
//
//	type weatherInput struct {
//	    City string `json:"city"`
//	}
//
//	weather := reloop.NewToolFunc(
//	    "get_weather",
//	    "Get the current weather in a city",
//	    schema.Object(map[string]*schema.Property{
//	        "city": schema.String("The city name"),
//	    }, "city"),
//	    func(ctx context.Context, in weatherInput) (string, error) {
//	        return lookupWeather(ctx, in.City)
//	    },
//	)
//
// Tools are invoked through a [ToolSet]. A call naming a tool that is not registered is not
// fatal: the model is told the tool does not exist and gets another turn. Errors returned by
// a tool become the text of its result, except for [ErrBackend] and context cancellation,
// which end the invocation.
//
// # Hooks
//
// Hooks observe an invocation without changing it. Implement any of the hook interfaces,
// such as [BeforeToolCallHook] or [AfterExecutionHook], and register the value:
//
//	exec := executor.New(agent).
//	    RegisterHook(loggers.NewZapHook(log.Zap)).
//	    RegisterHook(metricsHook)
//
// Hooks fire synchronously, in registration order. Hooks registered on an executor also see
// the invocations of delegated tasks, which carry a non-zero Depth.
//
// # Limits
//
// [Limits] bound each conversation to MaxTurns generations and the delegation tree to
// MaxDelegationDepth levels. Reaching either ends the invocation with
// [ErrTurnLimitExceeded] or [ErrMaxDelegationDepthExceeded]; inside a delegated task the
// error text becomes the delegate_task result, so the parent can carry on.
//
// # ExecutionContext
//
// [ExecutionContext] is created for every invocation, root or delegated. It carries the
// [LoopData], the cancellation context, the delegation depth, the parent link, limits,
// statistics and the termination outcome:
//
//	execCtx, _ := runner.Execute(ctx, "What time is it?", 0)
//	fmt.Println(execCtx.TerminationReason(), execCtx.Stats().Generations)
//
// # TimeProvider
//
// [TimeProvider] feeds the clock tool and the system prompt template. Use
// [MockTimeProvider] in tests:
//
//	clock := reloop.NewMockTimeProvider(time.Date(2024, 3, 5, 14, 3, 9, 0, time.UTC))
//	agent.WithTimeProvider(clock)
//	agent.WithBehaviorAndContext("Today is {{.Time.Weekday}}.")
package reloop
