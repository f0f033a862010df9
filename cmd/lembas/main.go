package main

import "lembas/internal/cli"

func main() {
	cli.Execute()
}
