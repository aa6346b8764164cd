package main

import (
	"os"

	"github.com/zhenliu/marketbrief/cmd/brief/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
