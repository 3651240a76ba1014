package main

import "github.com/theIDinside/mdb/cmd"

func main() {
	cmd.Execute()
}
