// Package main implements the mapper command line tool. It loads a
// YAML knowledge document, resolves how a target concept can be derived
// from the available concepts, and prints the resulting execution plans
// ranked by cost.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/EMMC-ASBL/tripper-sub000/config"
	"github.com/EMMC-ASBL/tripper-sub000/errors"
	"github.com/EMMC-ASBL/tripper-sub000/mapping"
	"github.com/EMMC-ASBL/tripper-sub000/triplestore"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "mapper"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		var noRoute *errors.NoRouteError
		if stderrors.As(err, &noRoute) {
			_, _ = fmt.Fprintln(os.Stderr, noRoute.Error())
		} else {
			slog.Error("mapper failed", "error", err)
		}
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}
	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s (build %s)\n", appName, Version, BuildTime)
		return nil
	}

	if err := validateFlags(cliCfg); err != nil {
		return err
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg := config.Default()
	if cliCfg.ConfigPath != "" {
		var err error
		cfg, err = config.Load(cliCfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
	}

	ctx := context.Background()

	store, err := triplestore.NewFileStore(cliCfg.Knowledge,
		triplestore.WithDefaultCosts(
			cfg.Resolver.DefaultEquivalenceCost,
			cfg.Resolver.DefaultTransformationCost,
		))
	if err != nil {
		return fmt.Errorf("load knowledge document: %w", err)
	}

	index, err := triplestore.BuildIndex(ctx, store)
	if err != nil {
		return fmt.Errorf("build graph index: %w", err)
	}
	logger.Info("knowledge document loaded",
		"path", cliCfg.Knowledge,
		"descriptors", index.Descriptors())

	available := mapping.NewAvailableSet()
	for _, iri := range availableConcepts(cliCfg.Available) {
		available.Add(mapping.Concept(iri))
	}

	resolver := mapping.NewResolver(index,
		mapping.WithMaxDepth(cfg.Resolver.MaxDepth),
		mapping.WithLogger(logger),
	)
	root, err := resolver.Resolve(ctx, mapping.Concept(cliCfg.Target), available)
	if err != nil {
		return err
	}

	if cliCfg.Routes == 1 {
		route, err := mapping.BestRoute(root)
		if err != nil {
			return err
		}
		return printPlan(resolver, route, 0)
	}

	it := resolver.RoutesByCost(root)
	for rank := 0; rank < cliCfg.Routes; rank++ {
		route, ok := it.Next()
		if !ok {
			break
		}
		if err := printPlan(resolver, route, rank); err != nil {
			return err
		}
	}
	return nil
}

// printPlan materializes a route and writes its steps to stdout, one
// line per step. Rank 0 is the cheapest route.
func printPlan(resolver *mapping.Resolver, route *mapping.Route, rank int) error {
	plan, err := resolver.Materialize(route)
	if err != nil {
		return fmt.Errorf("materialize route: %w", err)
	}

	fmt.Printf("plan %d: target=%s cost=%g steps=%d\n",
		rank, plan.Target, plan.TotalCost, len(plan.Steps))
	for i, step := range plan.Steps {
		fmt.Printf("  %2d %-7s %s\n", i, step.Op, formatStep(step))
	}
	return nil
}

func formatStep(step mapping.PlanStep) string {
	var b strings.Builder
	switch step.Op {
	case mapping.OpFetch:
		b.WriteString(string(step.Binds[0]))
	case mapping.OpRebind:
		fmt.Fprintf(&b, "%s <- %s", step.Binds[0], step.Args[0])
	case mapping.OpInvoke:
		args := make([]string, len(step.Args))
		for i, a := range step.Args {
			args[i] = string(a)
		}
		binds := make([]string, len(step.Binds))
		for i, c := range step.Binds {
			binds[i] = string(c)
		}
		fmt.Fprintf(&b, "%s <- %s(%s)",
			strings.Join(binds, ", "), step.DescriptorID, strings.Join(args, ", "))
	}
	if step.Cost != 0 {
		fmt.Fprintf(&b, " [cost=%g]", step.Cost)
	}
	return b.String()
}
