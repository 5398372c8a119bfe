package main

import "github.com/frahmantamala/rental-management/cmd"

func main() {
	cmd.Execute()
}
