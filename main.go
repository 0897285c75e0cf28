package main

import "agreement-radar/cmd"

func main() {
	cmd.Execute()
}
