package main

import (
	"github.com/minisport/arena/internal/cli"
)

func main() {
	cli.Execute()
}
