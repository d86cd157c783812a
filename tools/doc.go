// Package tools provides the built-in tools: search_wikipedia, get_current_time and
// delegate_task.
//
// Tools are total: a failure the model can do something about is returned as text, so the
// conversation can go on. Only context cancellation and backend failures of a delegated loop
// are returned as errors.
package tools
