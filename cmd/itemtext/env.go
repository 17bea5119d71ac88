package main

import (
	"io"
	"os"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	// DotEnv lists .env files loaded before reading ITEMTEXT_* variables.
	// Missing files are ignored.
	DotEnv []string
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		DotEnv: []string{".env"},
	}
}
