package main

import (
	"os"

	"github.com/zoheirhassoun/Telegram-bot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
