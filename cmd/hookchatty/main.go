// Command hookchatty emits more than the Stream Limiter's default cap of
// output, to exercise the overflow-kills-promptly path (spec.md §8
// scenario 4). It never exits on its own within the test's patience —
// the orchestrator is expected to kill it once its output overflows.
package main

import (
	"bufio"
	"os"
	"strings"
	"time"
)

func main() {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	line := strings.Repeat("x", 4096) + "\n"
	for {
		if _, err := w.WriteString(line); err != nil {
			return
		}
		w.Flush()
		time.Sleep(time.Millisecond)
	}
}
