// Package main is the entry point for relstore.
package main

func main() {
	Execute()
}
