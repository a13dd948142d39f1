package main

import (
	"os"

	"stockpick/internal/stockctl"
)

func main() {
	os.Exit(stockctl.Run(os.Args[1:]))
}
