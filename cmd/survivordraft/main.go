package main

import "github.com/mcoot/survivordraft/internal/cli"

func main() {
	cli.Execute()
}
