package main

import (
	"bookscout/cmd/bookscout/cmd"
)

func main() {
	cmd.Execute()
}
