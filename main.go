package main

import "github.com/showscribe/showscribe/cmd"

func main() {
	cmd.Execute()
}
