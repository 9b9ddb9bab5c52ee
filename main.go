package main

import (
	"puter4image-web/cmd"
)

func main() {
	cmd.Execute()
}
