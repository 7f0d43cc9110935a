package main

import (
	"sonicpdf/cmd"
)

func main() {
	cmd.Execute()
}
