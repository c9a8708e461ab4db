//go:build tools

package main

// Build-time tool dependencies, kept here so `go mod tidy` retains them.
import (
	_ "github.com/dmarkham/enumer"
)
