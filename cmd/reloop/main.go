// Command reloop is an interactive shell around a Hermes agent. Every line typed at the
// "> " prompt is answered by a fresh agent invocation that can search Wikipedia, read the
// clock and delegate sub-tasks to itself.
//
//	reloop --backend-url http://127.0.0.1:8080
//	reloop --config reloop.yaml "Who wrote The Master and Margarita?"
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errNoAnswer) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
