//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
)

const (
	binDir = "bin"
	binary = binDir + "/arframe"
)

// Default target when running plain "mage".
var Default = Build

// Build compiles the arframe binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-trimpath", "-o", binary, "./cmd/arframe"), withEnv("CGO_ENABLED", "0"))
	return err
}

// Test runs the unit and property tests.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Lint runs go vet over the module.
func Lint() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Check runs lint and tests.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build output.
func Clean() error {
	return os.RemoveAll(binDir)
}
