package main

import "github.com/theirongolddev/finsight/cmd"

func main() {
	cmd.Execute()
}
