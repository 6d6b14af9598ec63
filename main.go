package main

import "github.com/snapmatch/client-engine/cmd"

func main() {
	cmd.Execute()
}
