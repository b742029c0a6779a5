package main

import (
	"os"

	"github.com/luckysmouk/vidlytics/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
