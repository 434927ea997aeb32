// Command commitstack generates commit messages and multi-commit plans
// from staged changes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"commitstack/cli"
	"commitstack/config"
	"commitstack/gemini"
	"commitstack/git"
	"commitstack/gitdiff"
	"commitstack/unidiff"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return err
	}
	model := cfg.Model
	if model == "" {
		model = gemini.DefaultModel
	}

	app := &cli.App{
		Out:      os.Stdout,
		Err:      os.Stderr,
		In:       os.Stdin,
		Git:      git.NewRunner("."),
		Parser:   unidiff.NewParser(),
		Planner:  gemini.NewPlanner(client, model),
		Verifier: gitdiff.NewVerifier(),
		Config:   cfg,
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
