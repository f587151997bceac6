//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binDir = "bin"

var binaries = []string{"stl2png", "stlinfo"}

// Build compiles the binaries into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return err
	}
	for _, name := range binaries {
		out := filepath.Join(binDir, name)
		if err := sh.RunV("go", "build", "-o", out, "./cmd/"+name); err != nil {
			return fmt.Errorf("building %s: %w", name, err)
		}
	}
	return nil
}

// Test runs the test suite.
func Test() error {
	args := []string{"test", "./..."}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	return sh.RunV("go", args...)
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Sample generates a cube and renders its views into sample/.
func Sample() error {
	mg.Deps(Build)

	dir := "sample"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	model := filepath.Join(dir, "cube.stl")
	if err := sh.RunV(filepath.Join(binDir, "stlinfo"), "gen", "-shape", "cube", model); err != nil {
		return err
	}
	return sh.RunV(filepath.Join(binDir, "stl2png"), "-out", dir, model)
}

// Clean removes build and sample output.
func Clean() error {
	for _, dir := range []string{binDir, "sample"} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}
