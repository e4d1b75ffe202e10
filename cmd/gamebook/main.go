package main

import "github.com/tatianab/gamebook/internal/cli"

func main() {
	cli.Execute()
}
