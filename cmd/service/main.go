// cmd/service/main.go
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
