package main

import "github.com/institutofocos/consultorpro-sub003/internal/cli"

func main() {
	cli.Execute()
}
