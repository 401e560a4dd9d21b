// Command ir installs command line tools from GitHub and GitLab releases.
package main

import (
	"context"
	"os"
	"os/signal"
)

// Version will be set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, newOptions(os.Stdin, os.Stdout, os.Stderr), os.Args[1:])
	stop()
	os.Exit(code)
}
