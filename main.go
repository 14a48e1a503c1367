package main

import "map-atlas/cmd"

func main() {
	cmd.Execute()
}
