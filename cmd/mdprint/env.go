package main

import (
	"context"
	"io"
	"os"

	mdprint "github.com/alnah/go-mdprint"
)

// Converter is the part of *mdprint.Converter the commands use.
type Converter interface {
	Convert(ctx context.Context, in mdprint.Input) (*mdprint.Result, error)
	KaTeXDir() string
}

// Compile-time interface implementation check.
var _ Converter = (*mdprint.Converter)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// NewConverter builds the converter for convert and serve.
	NewConverter func(opts ...mdprint.Option) (Converter, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		NewConverter: newConverter,
	}
}

func newConverter(opts ...mdprint.Option) (Converter, error) {
	conv, err := mdprint.NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	return conv, nil
}
