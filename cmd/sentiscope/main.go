// Command sentiscope scores text from the command line and writes exports.
package main

import (
	"fmt"
	"os"

	"github.com/pscheid92/sentiscope/internal/platform/logging"
)

func main() {
	logging.InitLogger("warn", "text")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
