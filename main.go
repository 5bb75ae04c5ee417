package main

import "github.com/theirongolddev/fincast/cmd"

func main() {
	cmd.Execute()
}
