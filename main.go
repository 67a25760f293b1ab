package main

import "github.com/variantdev/docship/cmd"

func main() {
	cmd.Execute()
}
