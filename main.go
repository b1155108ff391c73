package main

import "github.com/theirongolddev/cachesim/cmd"

func main() {
	cmd.Execute()
}
