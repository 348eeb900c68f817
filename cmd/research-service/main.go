package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/lorekeep/lorekeep-research/researchservice"
)

func main() {
	// Best effort; env vars may come from the process environment instead.
	_ = godotenv.Load()

	if err := researchservice.Run(); err != nil {
		os.Exit(1)
	}
}
