package main

import (
	"os"

	"github.com/Prikur76/quiz-bots/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
