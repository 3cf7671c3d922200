package main

import "github.com/udayana-events/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
