package main

import "github.com/bryanchriswhite/screenfreeze/cmd/screenfreeze/commands"

func main() {
	commands.Execute()
}
