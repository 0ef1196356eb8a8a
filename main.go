package main

import "github.com/naka-gawa/community-metrics/cmd"

func main() {
	cmd.Execute()
}
