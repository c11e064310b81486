package main

import (
	"github.com/Makuqty/GridLock/internal/cli"
)

func main() {
	cli.Execute()
}
