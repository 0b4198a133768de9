package main

import "github.com/serfi-platform/user-management/cmd"

func main() {
	cmd.Execute()
}
