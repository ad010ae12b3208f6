package main

import "github.com/pfrederiksen/cfp-search/internal/cli"

func main() {
	cli.Execute()
}
