package main

import "github.com/Aleph-Alpha/colbert-search/internal/cli"

func main() {
	cli.Execute()
}
