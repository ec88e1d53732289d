package main

import "github.com/mingle-social/apiserver/cmd"

func main() {
	cmd.Execute()
}
