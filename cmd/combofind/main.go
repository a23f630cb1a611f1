package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/suykerbuyk/combo-finder/internal/archive"
	"github.com/suykerbuyk/combo-finder/internal/check"
	"github.com/suykerbuyk/combo-finder/internal/combo"
	"github.com/suykerbuyk/combo-finder/internal/config"
	"github.com/suykerbuyk/combo-finder/internal/db"
	"github.com/suykerbuyk/combo-finder/internal/finder"
	"github.com/suykerbuyk/combo-finder/internal/help"
	"github.com/suykerbuyk/combo-finder/internal/index"
	"github.com/suykerbuyk/combo-finder/internal/logging"
	"github.com/suykerbuyk/combo-finder/internal/playlist"
	"github.com/suykerbuyk/combo-finder/internal/queue"
	"github.com/suykerbuyk/combo-finder/internal/stats"
	"github.com/suykerbuyk/combo-finder/internal/watch"
	"github.com/suykerbuyk/combo-finder/internal/worker"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	if err := logging.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fatal("config [log]: %v", err)
	}

	name, args := os.Args[1], os.Args[2:]
	if c, ok := help.Lookup(name); ok && wantsHelp(args) {
		fmt.Print(help.FormatTerminal(c))
		return
	}

	switch name {
	case "scan":
		runScan(cfg, args)

	case "watch":
		runWatch(cfg, args)

	case "compress":
		runCompress(args)

	case "stats":
		runStats(cfg, args)

	case "enqueue":
		runEnqueue(cfg, args)

	case "worker":
		runWorker(cfg, args)

	case "check":
		noArgs(help.CmdCheck, args)
		report := check.Run(cfg)
		fmt.Print(report.Format())
		if report.HasFailures() {
			os.Exit(1)
		}

	case "init":
		noArgs(help.CmdInit, args)
		path, action, err := config.WriteDefault()
		if err != nil {
			fatal("init: %v", err)
		}
		fmt.Printf("%s %s\n", action, config.CompressHome(path))

	case "version":
		fmt.Printf("combofind %s\n", help.Version)

	case "help", "--help", "-h":
		if len(args) > 0 {
			if c, ok := help.Lookup(args[0]); ok {
				fmt.Print(help.FormatTerminal(c))
				return
			}
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
			usage()
			os.Exit(1)
		}
		fmt.Print(help.FormatUsage(help.TopLevel, help.Subcommands))

	default:
		if strings.HasPrefix(name, "-") {
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", name)
			usage()
			os.Exit(1)
		}
		runScan(cfg, os.Args[1:])
	}
}

var scanValueFlags = []string{
	"--player-char", "--player-name", "--player-code",
	"--opponent-char", "--opponent-name", "--opponent-code",
	"--lead-in", "--lead-out",
}

var scanBoolFlags = []string{"--cache", "--quiet"}

// scanSettings applies the positional strictness and the scan flags on top
// of the config file.
func scanSettings(cmd help.Command, cfg *config.Config, a parsedArgs) combo.Config {
	if v, ok := a.values["--lead-in"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			usageError(cmd, "--lead-in must be a number of frames")
		}
		cfg.Scan.LeadIn = n
	}
	if v, ok := a.values["--lead-out"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			usageError(cmd, "--lead-out must be a number of frames")
		}
		cfg.Scan.LeadOut = n
	}

	sides := []struct {
		prefix string
		side   *config.SideConfig
	}{
		{"--player-", &cfg.Filter.Player},
		{"--opponent-", &cfg.Filter.Opponent},
	}
	for _, s := range sides {
		if v, ok := a.values[s.prefix+"char"]; ok {
			s.side.Character = v
		}
		if v, ok := a.values[s.prefix+"name"]; ok {
			s.side.Name = v
		}
		if v, ok := a.values[s.prefix+"code"]; ok {
			s.side.Code = v
		}
	}
	if a.bools["--cache"] {
		cfg.Cache.Enabled = true
	}

	cc, err := cfg.Combo()
	if err != nil {
		usageError(cmd, err.Error())
	}
	return cc
}

// newFinder builds a finder for cc, attaching the scan cache when enabled.
// The returned func releases the cache.
func newFinder(cfg config.Config, cc combo.Config) (*finder.Finder, func()) {
	log := logging.Logger()
	opts := []finder.Option{finder.WithLogger(log)}
	if !cfg.Cache.Enabled {
		return finder.New(cc, opts...), func() {}
	}

	idx, err := index.Open(cfg.Cache.Path)
	if err != nil {
		log.Warnf("scan cache unavailable: %v", err)
		return finder.New(cc, opts...), func() {}
	}
	log.Debugf("using scan cache %s", idx.Path())
	opts = append(opts, finder.WithCache(idx.Scoped(cc.Key(), log)))
	return finder.New(cc, opts...), func() { idx.Close() }
}

func runScan(cfg config.Config, args []string) {
	a, err := parseArgs(args, scanValueFlags, scanBoolFlags)
	if err != nil {
		usageError(help.CmdScan, err.Error())
	}
	if len(a.pos) < 1 || len(a.pos) > 3 {
		usageError(help.CmdScan, "expected <path> [strictness] [out]")
	}

	root := a.pos[0]
	out := cfg.Scan.Output
	if len(a.pos) > 1 {
		s, err := strconv.ParseFloat(a.pos[1], 64)
		if err != nil || s < 0 || s > 1 {
			usageError(help.CmdScan, "strictness must be a number in [0,1]")
		}
		cfg.Scan.Strictness = s
	}
	if len(a.pos) > 2 {
		out = a.pos[2]
	}

	cc := scanSettings(help.CmdScan, &cfg, a)
	f, release := newFinder(cfg, cc)
	defer release()

	progress := make(chan int)
	done := make(chan struct{})
	go func() {
		defer close(done)
		showProgress(progress, a.bools["--quiet"])
	}()

	combos, err := f.TargetPath(root, progress)
	close(progress)
	<-done
	if err != nil {
		release()
		fatal("%v", err)
	}

	sortCombos(combos)
	if err := playlist.Write(out, combos); err != nil {
		release()
		fatal("write playlist: %v", err)
	}
	fmt.Printf("found %d combos, wrote %s\n", len(combos), out)
}

// showProgress drains progress, printing a counter to stderr unless quiet.
// The first value is the file total.
func showProgress(progress <-chan int, quiet bool) {
	total, seen, done := 0, false, 0
	for n := range progress {
		if !seen {
			total, seen = n, true
			continue
		}
		done += n
		if !quiet {
			fmt.Fprintf(os.Stderr, "\rscanned %d/%d replays", done, total)
		}
	}
	if !quiet && done > 0 {
		fmt.Fprintln(os.Stderr)
	}
}

func sortCombos(combos []combo.Combo) {
	slices.SortFunc(combos, func(a, b combo.Combo) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return cmp.Compare(a.Start, b.Start)
	})
}

func runWatch(cfg config.Config, args []string) {
	a, err := parseArgs(args, scanValueFlags, scanBoolFlags)
	if err != nil {
		usageError(help.CmdWatch, err.Error())
	}
	if len(a.pos) < 1 || len(a.pos) > 2 {
		usageError(help.CmdWatch, "expected <dir> [out]")
	}
	dir := a.pos[0]
	out := cfg.Scan.Output
	if len(a.pos) > 1 {
		out = a.pos[1]
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		fatal("%v: %s", finder.ErrPathNotFound, dir)
	}

	cc := scanSettings(help.CmdWatch, &cfg, a)
	f, release := newFinder(cfg, cc)
	defer release()

	log := logging.Logger()
	handle := func(path string) {
		combos, err := f.File(path)
		if err != nil {
			log.Warnf("skip %s: %v", path, err)
			return
		}
		if len(combos) == 0 {
			log.Debugf("%s: no combos", path)
			return
		}
		if err := playlist.Append(out, combos); err != nil {
			log.Errorf("append to %s: %v", out, err)
			return
		}
		log.Infof("%s: %d combos added to %s", path, len(combos), out)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watch.New(dir, cfg.Settle(), handle, log).Run(ctx); err != nil {
		release()
		fatal("watch: %v", err)
	}
}

func runCompress(args []string) {
	a, err := parseArgs(args, nil, []string{"--remove"})
	if err != nil {
		usageError(help.CmdCompress, err.Error())
	}
	if len(a.pos) != 1 {
		usageError(help.CmdCompress, "expected <path>")
	}

	root := a.pos[0]
	if _, err := os.Stat(root); err != nil {
		fatal("%v: %s", finder.ErrPathNotFound, root)
	}
	n, err := archive.CompressTree(root, a.bools["--remove"], logging.Logger())
	if err != nil {
		fatal("compress: %v", err)
	}
	fmt.Printf("compressed %d replays\n", n)
}

func runStats(cfg config.Config, args []string) {
	if len(args) > 1 {
		usageError(help.CmdStats, "expected [playlist.json]")
	}
	path := cfg.Scan.Output
	if len(args) == 1 {
		path = args[0]
	}

	combos, err := playlist.ReadFile(path)
	if err != nil {
		fatal("stats: %v", err)
	}
	fmt.Print(stats.Format(stats.Compute(combos), path))
}

func newQueue(cfg config.Config) (*queue.RedisQueue, *redis.Client) {
	opts, err := redis.ParseURL(cfg.Worker.RedisURL)
	if err != nil {
		fatal("config [worker] redis_url: %v", err)
	}
	client := redis.NewClient(opts)
	return queue.NewRedisQueue(client, cfg.Worker.Queue), client
}

func runEnqueue(cfg config.Config, args []string) {
	if len(args) != 1 || strings.HasPrefix(args[0], "-") {
		usageError(help.CmdEnqueue, "expected <path>")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q, client := newQueue(cfg)
	defer client.Close()

	n, err := worker.EnqueuePath(ctx, q, args[0])
	if err != nil {
		client.Close()
		fatal("enqueue: %v", err)
	}
	fmt.Printf("queued %d replays on %s\n", n, q.Name())
}

func runWorker(cfg config.Config, args []string) {
	noArgs(help.CmdWorker, args)
	if cfg.Worker.DatabaseURL == "" {
		fatal("worker: database_url is not set (config [worker] or COMBOFIND_DATABASE_URL)")
	}
	cc, err := cfg.Combo()
	if err != nil {
		fatal("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Logger()

	pool, err := db.NewPool(ctx, cfg.Worker.DatabaseURL, int32(max(cfg.Worker.Concurrency, 1)))
	if err != nil {
		fatal("connect database: %v", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		fatal("%v", err)
	}

	q, client := newQueue(cfg)
	defer client.Close()

	p := worker.NewProcessor(ctx, cc, db.NewComboWriter(pool))
	log.Infof("consuming %s (config %s)", q.Name(), cc.Key())

	if cfg.Worker.Concurrency > 1 {
		err = q.ConsumeConcurrent(ctx, cfg.Worker.Concurrency, cfg.Worker.Buffer, p.Handle)
	} else {
		err = q.Consume(ctx, p.Handle)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("worker stopped: %v", err)
	}
	log.Infof("worker shut down")
}

func usage() {
	fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
}

func usageError(cmd help.Command, msg string) {
	fmt.Fprintf(os.Stderr, "combofind %s: %s\nUsage: %s\n", cmd.Name, msg, cmd.Usage)
	os.Exit(1)
}

func noArgs(cmd help.Command, args []string) {
	if len(args) > 0 {
		usageError(cmd, "unexpected argument "+args[0])
	}
}

func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return true
		}
	}
	return false
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "combofind: "+format+"\n", args...)
	os.Exit(1)
}
