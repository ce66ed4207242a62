package main

import "github.com/primerdw/bartender-api/cmd"

func main() {
	cmd.Execute()
}
