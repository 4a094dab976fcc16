package main

import (
	"os"
	_ "time/tzdata"

	"codeberg.org/recruitportal/server/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("validator failed", "error", err.Error())
		os.Exit(1)
	}
}
