// Package main provides the ncview command: a viewer backend for CF-style
// NetCDF datasets.
package main

import (
	"os"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
