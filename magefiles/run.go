//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Evaluates the tower example once and prints the JSON result.
func (Run) Example() error {
	return runScript("examples/tower.medit", false)
}

// Watches the tower example and re-evaluates it on every save.
func (Run) Watch() error {
	return runScript("examples/tower.medit", true)
}

func runScript(script string, watch bool) error {
	mg.Deps(Build.Binary)
	args := []string{"-config", "meshedit.toml"}
	if watch {
		args = append(args, "-watch")
	}
	args = append(args, script)
	fmt.Println("Run meshedit...")
	_, err := executeCmd("bin/meshedit", withArgs(args...), withStream())
	return err
}
