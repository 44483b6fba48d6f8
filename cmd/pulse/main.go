// Package main is the entry point for the Pulse analytics server.
package main

func main() {
	Execute()
}
