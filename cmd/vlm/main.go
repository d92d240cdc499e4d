package main

import "github.com/mcoot/versusleague/internal/cli"

func main() {
	cli.Execute()
}
