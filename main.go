package main

import "github.com/Tiliavir/worktimer/cmd"

func main() {
	cmd.Execute()
}
