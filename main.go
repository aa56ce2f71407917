package main

import "github.com/KaramelBytes/brokerdash-cli/cmd"

func main() {
	cmd.Execute()
}
