package main

import "clarion/cmd"

func main() {
	cmd.Execute()
}
