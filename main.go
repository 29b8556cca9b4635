package main

import (
	"os"

	"bookminder/cli"
)

func main() {
	os.Exit(cli.Execute())
}
