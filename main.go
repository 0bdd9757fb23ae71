package main

import "github.com/zapedidos/zapedidos/cmd"

func main() {
	cmd.Execute()
}
