package main

import "github.com/Tiliavir/activity-timeline/cmd"

func main() {
	cmd.Execute()
}
