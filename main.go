// linzstac searches the STAC catalogs of the LINZ elevation and imagery
// buckets and downloads the tiles covering a location.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/internetarchive/linzstac/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		printCauses(os.Stderr, err, 0)
		os.Exit(1)
	}
}

// printCauses writes one "caused by:" line per wrapped error, indented by depth.
func printCauses(w io.Writer, err error, depth int) {
	var causes []error

	switch wrapped := err.(type) {
	case interface{ Unwrap() error }:
		if cause := wrapped.Unwrap(); cause != nil {
			causes = []error{cause}
		}
	case interface{ Unwrap() []error }:
		causes = wrapped.Unwrap()
	}

	for _, cause := range causes {
		fmt.Fprintf(w, "%scaused by: %s\n", strings.Repeat("  ", depth), cause)
		printCauses(w, cause, depth+1)
	}
}
