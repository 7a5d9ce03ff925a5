package main

import "repoconform/internal/cmd"

func main() {
	cmd.Execute()
}
