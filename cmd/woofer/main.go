package main

import (
	"fmt"
	"os"

	"github.com/park285/woofer-bot/internal/config"
	"github.com/park285/woofer-bot/internal/obslog"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	config.LoadDotEnv()
	if err := obslog.InitFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
	}

	err := NewRootCmd(version).Execute()
	obslog.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
