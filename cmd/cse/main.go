package main

import "github.com/rzbill/cse/pkg/cli/cmd"

func main() {
	cmd.Execute()
}
