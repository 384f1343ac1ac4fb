// Package main provides the entry point for the mailibctl operator CLI.
package main

import "github.com/mailib/mailib-server/internal/cli"

func main() {
	cli.Execute()
}
