package main

import (
	"github.com/codequest-game/codequest/internal/cli"
)

func main() {
	cli.Execute()
}
