package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	// version is set via -ldflags
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	root := newRootCmd()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
