package main

import "github.com/mouse-blink/refix/cmd"

func main() {
	cmd.Execute()
}
