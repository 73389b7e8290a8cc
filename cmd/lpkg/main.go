package main

import "martianoff/lispkg/cmd/lpkg/commands"

func main() {
	commands.Execute()
}
