package main

import "github.com/xela07ax/emergency-console/internal/cli"

func main() {
	cli.Execute()
}
