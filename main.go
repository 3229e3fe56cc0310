package main

import "nathanbeddoewebdev/exosync/cmd"

func main() {
	cmd.Execute()
}
