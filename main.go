package main

import "github.com/mcardoso/vidsage/cmd"

func main() {
	cmd.Execute()
}
