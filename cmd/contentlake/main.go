package main

import (
	"os"

	_ "modernc.org/sqlite"

	"github.com/contentlake/contentlake/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
