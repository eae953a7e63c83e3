package main

import (
	"os"

	"recruitsync_backend/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
