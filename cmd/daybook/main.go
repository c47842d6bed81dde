package main

import (
	"os"

	"github.com/sandeepkv93/daybook/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
