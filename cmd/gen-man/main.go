package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/suykerbuyk/combo-finder/internal/help"
)

func main() {
	dir := "man"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatal(err)
	}

	date := time.Now().Format("2006-01-02")

	if err := write(dir, "combofind.1", help.FormatRoffTopLevel(help.TopLevel, help.Subcommands, date)); err != nil {
		fatal(err)
	}
	for _, cmd := range help.Subcommands {
		if err := write(dir, cmd.ManName()+".1", help.FormatRoff(cmd, date)); err != nil {
			fatal(err)
		}
	}
}

func write(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  %s\n", path)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "gen-man: %v\n", err)
	os.Exit(1)
}
