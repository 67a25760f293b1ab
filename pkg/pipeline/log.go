package pipeline

import (
	"fmt"
	"io"
)

// collapsed starts a collapsed section in the Buildkite job log
func collapsed(w io.Writer, title string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "--- %s\n", title)
}
