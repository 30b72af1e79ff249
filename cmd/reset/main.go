// Command reset inspects and edits cycle progress keys.
//
//	reset list
//	reset delete variable:daily_kills global:weekly
//	reset set variable:daily_kills 2025-03-10T00:00:00Z
//
// Deleting a variable key makes the next check re-seed it from the oldest stored
// value; deleting a global key re-seeds it from the current boundary.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/osse101/CycleVars_Go/internal/bootstrap"
	"github.com/osse101/CycleVars_Go/internal/config"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/repository"
)

const usage = `usage: reset [-progress-file path] <command> [args]

commands:
  list                     print every progress key and its boundary
  delete <key>...          remove progress keys (variable:<name> or global:<cycle>)
  set <key> <RFC3339 time> overwrite a progress key`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	progressFile := flag.String("progress-file", "", "edit this YAML progress file instead of the configured backend")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *progressFile != "" {
		cfg.ProgressBackend = config.ProgressBackendFile
		cfg.ProgressFile = *progressFile
	}

	ctx := context.Background()
	repos, err := bootstrap.InitializeRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer repos.Close()

	if err := run(ctx, repos.Progress, args, os.Stdout); err != nil {
		log.Printf("reset: %v", err)
		repos.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, repo repository.Progress, args []string, out io.Writer) error {
	switch args[0] {
	case "list":
		entries, err := repo.ListProgress(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%-40s %s\n", e.Key, e.Boundary.Format(time.RFC3339))
		}
		return nil

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("delete needs at least one key")
		}
		for _, key := range args[1:] {
			if err := checkKey(key); err != nil {
				return err
			}
		}
		for _, key := range args[1:] {
			if err := repo.DeleteProgress(ctx, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			fmt.Fprintf(out, "deleted %s\n", key)
		}
		return nil

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("set needs a key and a time")
		}
		if err := checkKey(args[1]); err != nil {
			return err
		}
		boundary, err := time.Parse(time.RFC3339, args[2])
		if err != nil {
			return fmt.Errorf("invalid time %q: %w", args[2], err)
		}
		if err := repo.OverwriteProgress(ctx, args[1], boundary); err != nil {
			return fmt.Errorf("set %s: %w", args[1], err)
		}
		fmt.Fprintf(out, "%s = %s\n", args[1], boundary.Format(time.RFC3339))
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func checkKey(key string) error {
	if !domain.IsValidProgressKey(key) {
		return fmt.Errorf("invalid progress key %q: want variable:<name> or global:<cycle>", key)
	}
	return nil
}
