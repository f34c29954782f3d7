// Command recruitctl administers the interview service from a shell.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
)

func main() {
	if err := newRootCommand(config.Load).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "recruitctl:", err)
		os.Exit(1)
	}
}
