//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the meshedit binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/meshedit", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Tidies go.mod and go.sum.
func (Build) Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	return err
}
