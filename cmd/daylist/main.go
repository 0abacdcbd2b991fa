package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/daylist/internal/cli"
	"github.com/idilsaglam/daylist/internal/config"
	"github.com/idilsaglam/daylist/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Main(ctx, os.Args[1:], cli.Env{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Vars:        config.Environ(),
		Interactive: tui.Run,
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
