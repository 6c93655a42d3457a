package main

import "github.com/adisurya/campushub/cmd"

func main() {
	cmd.Execute()
}
