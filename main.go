package main

import "mspro-labs/cafe-critic/cmd"

func main() {
	cmd.Execute()
}
