package main

import (
	"github.com/joho/godotenv"

	"github.com/bananagen/bananagen/cmd/cli/commands"
)

func main() {
	_ = godotenv.Load()
	commands.Execute()
}
