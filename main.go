package main

import "github.com/katharostech/cast2gif/cmd"

func main() {
	cmd.Execute()
}
