package main

import "neurita/arbor/cmd"

func main() {
	cmd.Execute()
}
