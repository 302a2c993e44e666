package main

import "github.com/jakexks/license-hound/cmd"

func main() {
	cmd.Execute()
}
