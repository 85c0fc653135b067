package parse

import (
	"io"
	"runtime"

	"github.com/charmbracelet/log"
)

// Options configures an Analyzer
type Options struct {
	Workers  int         // Concurrent classes per batch (default: runtime.NumCPU())
	MaxDepth int         // Maximum nested range depth, 0 disables the limit
	Logger   *log.Logger // Debug output (default: discarded)
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}
