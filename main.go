package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/avoran/interview-agent/cmd"
)

func main() {
	// Missing .env is fine; secrets may come from the environment or config.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
