package main

import (
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/cli"
)

func main() {
	cli.Execute()
}
