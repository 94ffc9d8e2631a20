package main

import (
	"os"

	appLog "calview/internal/log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		appLog.Error("calview failed", err)
		os.Exit(1)
	}
}
