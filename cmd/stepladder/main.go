package main

import "github.com/stepladder-dev/stepladder/cmd/stepladder/cmd"

func main() {
	cmd.Execute()
}
