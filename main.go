package main

import "github.com/KaramelBytes/tdfdash/cmd"

func main() {
	cmd.Execute()
}
