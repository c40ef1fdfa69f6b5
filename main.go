package main

import "github.com/KaramelBytes/housing-cli/cmd"

func main() {
	cmd.Execute()
}
