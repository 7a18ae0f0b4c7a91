package main

import "github.com/locpham246/task-manager/cmd"

func main() {
	cmd.Execute()
}
