package main

import (
	"fmt"
	"os"

	"pulse/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}
