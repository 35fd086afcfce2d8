// Command hookecho is a minimal structured-output fixture hook: it reads
// the event JSON from stdin and echoes a continue/stop verdict, for
// exercising the Result Mapper's structured contract end-to-end.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"cchooks/internal/event"
)

func main() {
	block := flag.Bool("block", false, "emit a continue:false verdict instead of continue:true")
	flag.Parse()

	data, _ := io.ReadAll(os.Stdin)
	var ev event.Event
	_ = json.Unmarshal(data, &ev)

	var out map[string]any
	if *block {
		out = map[string]any{"continue": false, "stopReason": "hookecho: -block requested"}
	} else {
		out = map[string]any{"continue": true}
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
