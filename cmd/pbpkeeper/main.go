package main

import (
	"os"

	"github.com/louisbranch/pbpkeeper/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
