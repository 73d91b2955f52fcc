package main

import "github.com/KaramelBytes/leadscore-cli/cmd"

func main() {
	cmd.Execute()
}
