package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"commitstack"
	"commitstack/cache"
	"commitstack/executor"
	"commitstack/style"
)

func newComposeCmd(app *App) *cobra.Command {
	var (
		maxCommits int
		doCommit   bool
		yes        bool
		styleName  string
		regenerate bool
		showJSON   bool
		debug      bool
	)
	const recentLimit = 5

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Split staged changes into a stack of atomic commits",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repoRoot, err := app.Git.RepoRoot(ctx)
			if err != nil {
				return err
			}

			diff, err := app.Git.StagedDiff(ctx)
			if err != nil {
				return err
			}
			if strings.TrimSpace(diff) == "" {
				return fmt.Errorf("no staged changes; stage changes with git add first")
			}

			fileDiffs, parseWarnings := app.Parser.Parse(diff)
			for _, w := range parseWarnings {
				app.printWarning("%s", w)
			}
			inv := commitstack.BuildInventory(fileDiffs)
			if inv.Len() == 0 {
				return fmt.Errorf("staged diff contains no plannable hunks")
			}

			if maxCommits <= 0 {
				maxCommits = app.Config.MaxCommits
			}
			profile := style.ParseProfile(styleName)
			if styleName == "" {
				profile = style.ParseProfile(app.Config.Style.Profile)
			}

			store := cache.NewStore(filepath.Join(repoRoot, ".commitstack"))
			contextHash := cache.ContextHash(diff, string(profile), maxCommits)

			if showJSON {
				return showCachedPlan(app, store)
			}

			planJSON, fromCache, err := obtainPlanJSON(cmd, app, store, contextHash, fileDiffs, profile, maxCommits, regenerate, recentLimit, debug)
			if err != nil {
				return err
			}

			plan, err := commitstack.ParsePlan(planJSON)
			if err != nil {
				return err
			}

			if corrected, log := commitstack.TryCorrectHunkIDs(plan, inv); corrected {
				fmt.Fprintln(app.Err, "auto-corrected hunk ID errors:")
				for _, entry := range log {
					fmt.Fprintf(app.Err, "  - %s\n", entry)
				}
			}

			if errs := commitstack.Validate(plan, inv, maxCommits); len(errs) > 0 {
				app.printError("plan validation failed:")
				for _, e := range errs {
					app.printError("  - %s", e)
				}
				return fmt.Errorf("invalid plan (%d errors)", len(errs))
			}

			styleCfg := styleConfig(app, profile)
			printPlan(app, plan, fromCache, styleCfg)

			if !doCommit {
				fmt.Fprintln(app.Err, dimStyle.Render("plan only; run with --commit to execute"))
				return nil
			}

			if !yes && !app.confirm("Execute this plan and create commits?") {
				fmt.Fprintln(app.Err, "cancelled")
				return nil
			}

			exec := executor.New(app.Git, app.Verifier, filepath.Join(repoRoot, ".tmp"))
			result, err := exec.Execute(ctx, plan, inv, fileDiffs, func(c commitstack.PlannedCommit) (string, error) {
				return style.Render(c, styleCfg), nil
			})
			if err != nil {
				app.printError("execution failed: %v", err)
				for _, entry := range result.RestoreLog {
					fmt.Fprintln(app.Err, entry)
				}
				return err
			}

			store.Invalidate()
			fmt.Fprintf(app.Err, "created %d commit(s)\n", result.CommitsCreated)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxCommits, "max-commits", 0, "maximum commits in the plan (default from config)")
	cmd.Flags().BoolVar(&doCommit, "commit", false, "execute the plan instead of only printing it")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&styleName, "style", "", "message style profile (default|conventional|ticket|kernel|blueprint)")
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "ignore any cached plan and regenerate")
	cmd.Flags().BoolVar(&showJSON, "json", false, "print the cached plan JSON and exit")
	cmd.Flags().BoolVar(&debug, "debug", false, "print the prompt and raw model response to stderr")

	return cmd
}

func obtainPlanJSON(cmd *cobra.Command, app *App, store *cache.Store, contextHash string, fileDiffs []commitstack.FileDiff, profile style.Profile, maxCommits int, regenerate bool, recentLimit int, debug bool) (string, bool, error) {
	ctx := cmd.Context()

	if !regenerate && store.Valid(contextHash) {
		cached, err := store.LoadPlan()
		if err == nil && cached != "" {
			fmt.Fprintln(app.Err, dimStyle.Render("using cached compose plan"))
			return cached, true, nil
		}
	}

	branch, err := app.Git.Branch(ctx)
	if err != nil {
		return "", false, err
	}
	recent, err := app.Git.RecentSubjects(ctx, recentLimit)
	if err != nil {
		return "", false, err
	}

	prompt := commitstack.BuildComposePrompt(fileDiffs, branch, recent, string(profile), maxCommits)
	if debug {
		fmt.Fprintf(app.Err, "--- prompt ---\n%s\n--- end prompt ---\n", prompt)
	}
	raw, err := app.Planner.Plan(ctx, commitstack.ComposeSystemPrompt, prompt)
	if err != nil {
		return "", false, err
	}
	if debug {
		fmt.Fprintf(app.Err, "--- raw response ---\n%s\n--- end raw response ---\n", raw)
	}

	planJSON := commitstack.ExtractJSONObject(raw)
	if err := store.Save(planJSON, contextHash, app.Config.Model, 0); err != nil {
		app.printWarning("could not cache plan: %v", err)
	}
	return planJSON, false, nil
}

func showCachedPlan(app *App, store *cache.Store) error {
	planJSON, err := store.LoadPlan()
	if err != nil {
		return err
	}
	if planJSON == "" {
		return fmt.Errorf("no cached compose plan found")
	}
	fmt.Fprintln(app.Out, planJSON)
	if md, err := store.LoadMetadata(); err == nil && md != nil {
		fmt.Fprintf(app.Err, "generated: %s\nmodel: %s\n", md.GeneratedAt.Format("2006-01-02 15:04:05"), md.Model)
	}
	return nil
}

// styleConfig translates the persisted configuration into the renderer's
// terms, with the selected profile applied.
func styleConfig(app *App, profile style.Profile) style.Config {
	cfg := style.DefaultConfig()
	cfg.Profile = profile
	if app.Config.Style.MaxBullets > 0 {
		cfg.MaxBullets = app.Config.Style.MaxBullets
	}
	if app.Config.Style.WrapWidth > 0 {
		cfg.WrapWidth = app.Config.Style.WrapWidth
	}
	cfg.IncludeBody = app.Config.Style.IncludeBody
	if app.Config.Style.TicketPlacement != "" {
		cfg.TicketPlacement = app.Config.Style.TicketPlacement
	}
	return cfg
}

func printPlan(app *App, plan *commitstack.ComposePlan, fromCache bool, styleCfg style.Config) {
	origin := "new"
	if fromCache {
		origin = "cached"
	}
	fmt.Fprintln(app.Out, headerStyle.Render(fmt.Sprintf("Proposed commit stack (%d commits, %s)", len(plan.Commits), origin)))

	for _, w := range plan.Warnings {
		app.printWarning("%s", w)
	}

	for i, c := range plan.Commits {
		title := c.Title
		if c.Type != "" {
			if c.Scope != "" {
				title = fmt.Sprintf("%s(%s): %s", c.Type, c.Scope, c.Title)
			} else {
				title = fmt.Sprintf("%s: %s", c.Type, c.Title)
			}
		}
		fmt.Fprintf(app.Out, "  %d. %s %s\n", i+1, commitStyle.Render(title), dimStyle.Render(fmt.Sprintf("(%d hunks)", len(c.Hunks))))
	}

	fmt.Fprintln(app.Out)
	fmt.Fprintln(app.Out, headerStyle.Render("Commit message previews"))
	for _, c := range plan.Commits {
		fmt.Fprintf(app.Out, "\n[%s]\n%s\n", commitStyle.Render(c.ID), style.Render(c, styleCfg))
	}
}
