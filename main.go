package main

import "github.com/devcli/devcli/cmd"

func main() {
	cmd.Execute()
}
