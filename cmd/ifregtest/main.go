// Command ifregtest is the CLI entry point.
package main

import "github.com/ifregtest/ifregtest/cmd"

func main() {
	cmd.Execute()
}
