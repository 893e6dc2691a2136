package main

import (
	"io"
	"os"
	"time"

	minidocs "github.com/alnah/go-minidocs"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// EditorOptions are appended to the options derived from config, so
	// tests can inject engines that need no browser.
	EditorOptions []minidocs.Option
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
