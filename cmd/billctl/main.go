package main

import "github.com/MrJamesThe3rd/voicebill/cmd/billctl/internal/command"

func main() {
	command.Execute()
}
