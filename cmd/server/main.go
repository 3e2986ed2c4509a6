package main

import "github.com/iliyamo/event-booking/cmd/server/cmd"

func main() {
	cmd.Execute()
}
