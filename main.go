package main

import "nightdrive/cmd"

func main() {
	cmd.Execute()
}
