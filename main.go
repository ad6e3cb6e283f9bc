package main

import "dlbuild/cmd"

func main() {
	cmd.Execute()
}
