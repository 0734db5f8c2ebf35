package common

import (
	"fmt"
	"os"
)

// PrintBanner writes the startup banner to stderr so stdout stays clean
// for rendered output.
func PrintBanner() {
	fmt.Fprintf(os.Stderr, "tradedesk %s\n", GetFullVersion())
}
