// Command mmhctl runs the server and the batch jobs usually started by cron.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	_ "time/tzdata"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
