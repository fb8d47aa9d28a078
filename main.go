package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/meshedit/pkg/config"
	"github.com/chazu/meshedit/pkg/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		logging.Error("meshedit failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("meshedit", flag.ContinueOnError)
	configPath := fs.String("config", "meshedit.toml", "path to the TOML config file")
	watch := fs.Bool("watch", false, "re-evaluate the script whenever it changes")
	stlPath := fs.String("stl", "", "also write the evaluated mesh to this STL file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: meshedit [-config file] [-watch] [-stl out.stl] script.medit")
	}
	script := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		return err
	}

	app := NewAppWithConfig(cfg)
	emit := func(source []byte) error {
		if *stlPath == "" {
			return writeResult(stdout, app.Evaluate(string(source)))
		}
		result, stlErr := app.EvaluateToSTL(string(source), *stlPath)
		if err := writeResult(stdout, result); err != nil {
			return err
		}
		return stlErr
	}

	if !*watch {
		source, err := os.ReadFile(script)
		if err != nil {
			return err
		}
		return emit(source)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchScript(ctx, script, emit)
}

func writeResult(w io.Writer, result EvalResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(result)
}
