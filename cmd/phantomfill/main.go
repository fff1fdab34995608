// Command phantomfill replays historical prediction-market order book
// captures against a strategy and a realistic fill model, reporting the
// gap between naive and realistic PnL.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
