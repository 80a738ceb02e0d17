package main

import "github.com/sjzsdu/explorer/cmd"

func main() {
	cmd.Execute()
}
