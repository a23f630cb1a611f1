package help

import "strings"

// Version is the combofind release version, set at build time via -ldflags.
// Defaults to "dev" when built without version injection (e.g. `go run`).
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "--cache" or "--player-char <name>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string // e.g. "path" or "strictness"
	Desc     string
	Optional bool
}

// Command describes a combofind subcommand (or the top-level binary when Name is "").
type Command struct {
	Name        string   // "scan", "watch", etc; "" for top-level
	Synopsis    string   // one-line description (lowercase, for --help header)
	Brief       string   // short description for usage table (capitalized)
	Usage       string   // full usage line, e.g. "combofind stats <playlist.json>"
	TableUsage  string   // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	SeeAlso     []string // man page cross-refs, e.g. "combofind(1)"
}

// tableUsage returns TableUsage if set, otherwise Usage.
func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "combofind" for top-level,
// "combofind-<name>" for subcommands.
func (c Command) ManName() string {
	if c.Name == "" {
		return "combofind"
	}
	return "combofind-" + strings.ReplaceAll(c.Name, " ", "-")
}

// TopLevel is the top-level combofind command (used by FormatUsage).
var TopLevel = Command{
	Name:     "",
	Synopsis: "find combos in Slippi replays",
}

// ScanFlags are shared by scan and watch.
var ScanFlags = []Flag{
	{Name: "--player-char <name>", Desc: "Only combos performed by this character"},
	{Name: "--player-name <name>", Desc: "Only combos performed by this display name"},
	{Name: "--player-code <code>", Desc: "Only combos performed by this connect code"},
	{Name: "--opponent-char <name>", Desc: "Only combos against this character"},
	{Name: "--opponent-name <name>", Desc: "Only combos against this display name"},
	{Name: "--opponent-code <code>", Desc: "Only combos against this connect code"},
	{Name: "--lead-in <frames>", Desc: "Frames of neutral kept before the combo (default: 30)"},
	{Name: "--lead-out <frames>", Desc: "Frames kept after the kill (default: 0)"},
	{Name: "--cache", Desc: "Reuse results for unchanged replays"},
	{Name: "--quiet", Desc: "Do not print progress"},
}

var CmdScan = Command{
	Name:       "scan",
	Synopsis:   "find kill combos and write a playlist",
	Brief:      "Find kill combos and write a playlist",
	Usage:      "combofind scan <path> [strictness] [out] [flags]",
	TableUsage: "combofind scan <path> [strictness] [out]",
	Args: []Arg{
		{Name: "path", Desc: "Replay file or directory to scan recursively"},
		{Name: "strictness", Desc: "Number in [0,1]; higher keeps fewer combos (default: 0.5)", Optional: true},
		{Name: "out", Desc: "Playlist to write (default: combos.json)", Optional: true},
	},
	Flags: ScanFlags,
	Description: `Scans every .slp and .slpz replay under path. For each kill in a
one-versus-one game it walks back to where the punish began and keeps
the window if the combo meets the strictness thresholds for length,
damage and hit count.

The result is written as a Dolphin playback queue that can be loaded
directly by the Slippi launcher. Files that cannot be parsed are
skipped. Running combofind with a path and no subcommand is the same
as combofind scan.`,
	Examples: []string{
		"combofind ~/Slippi                          Scan with default settings",
		"combofind scan ~/Slippi 0.8 best.json       Keep only strong combos",
		"combofind scan ~/Slippi --player-char fox   Only Fox combos",
	},
	SeeAlso: []string{"combofind(1)", "combofind-watch(1)", "combofind-stats(1)"},
}

var CmdWatch = Command{
	Name:       "watch",
	Synopsis:   "scan replays as they are recorded",
	Brief:      "Scan replays as they are recorded",
	Usage:      "combofind watch <dir> [out] [flags]",
	TableUsage: "combofind watch <dir> [out]",
	Args: []Arg{
		{Name: "dir", Desc: "Directory the replays are recorded into"},
		{Name: "out", Desc: "Playlist to append to (default: combos.json)", Optional: true},
	},
	Flags: ScanFlags,
	Description: `Watches dir and its subdirectories. A replay is scanned once it has
not changed for settle_ms (see [watch] in the config) and any combos it
holds are appended to the playlist. Runs until interrupted.`,
	SeeAlso: []string{"combofind(1)", "combofind-scan(1)"},
}

var CmdCompress = Command{
	Name:     "compress",
	Synopsis: "compress replays to .slpz",
	Brief:    "Compress replays to .slpz",
	Usage:    "combofind compress <path> [--remove]",
	Args: []Arg{
		{Name: "path", Desc: "Replay file or directory"},
	},
	Flags: []Flag{
		{Name: "--remove", Desc: "Delete each .slp after it is compressed"},
	},
	Description: `Writes a zstd-compressed .slpz next to every .slp replay under path.
Compressed replays are scanned like the originals. Replays that already
have an .slpz are skipped.`,
	SeeAlso: []string{"combofind(1)", "combofind-scan(1)"},
}

var CmdStats = Command{
	Name:     "stats",
	Synopsis: "summarize a combo playlist",
	Brief:    "Summarize a combo playlist",
	Usage:    "combofind stats [playlist.json]",
	Args: []Arg{
		{Name: "playlist.json", Desc: "Playlist to read (default: scan.output from the config)", Optional: true},
	},
	Description: `Prints combo counts, total and average combo duration at 60 frames per
second, the five longest combos and the directories with the most
combos.`,
	SeeAlso: []string{"combofind(1)", "combofind-scan(1)"},
}

var CmdEnqueue = Command{
	Name:     "enqueue",
	Synopsis: "queue replays for distributed workers",
	Brief:    "Queue replays for distributed workers",
	Usage:    "combofind enqueue <path>",
	Args: []Arg{
		{Name: "path", Desc: "Replay file or directory"},
	},
	Description: `Pushes one job per replay to the Redis list named by [worker] queue.
Each job carries a fresh id and the replay's path, which must be
readable by the workers.`,
	SeeAlso: []string{"combofind(1)", "combofind-worker(1)"},
}

var CmdWorker = Command{
	Name:     "worker",
	Synopsis: "process queued replays into Postgres",
	Brief:    "Process queued replays into Postgres",
	Usage:    "combofind worker",
	Description: `Consumes jobs from the Redis queue with [worker] concurrency workers,
scans each replay and writes its combos to the combos table of
database_url. A job that fails is retried up to 3 times and then moved
to the dead-letter list <queue>:dlq. Rows for a job are replaced, so a
retried job never duplicates combos.

COMBOFIND_REDIS_URL and COMBOFIND_DATABASE_URL override the config.
Stops cleanly on SIGINT or SIGTERM.`,
	SeeAlso: []string{"combofind(1)", "combofind-enqueue(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate config, output and worker setup",
	Brief:    "Validate config, output and worker setup",
	Usage:    "combofind check",
	Description: `Runs diagnostic checks and prints a pass/warn/FAIL report:
  - Config file location
  - Strictness, lead frames and character filters
  - Output directory and existing playlist
  - Scan cache database
  - Redis and Postgres URLs and worker pool size

Exit code 0 if all checks pass or warn, 1 if any check fails.`,
	SeeAlso: []string{"combofind(1)", "combofind-init(1)"},
}

var CmdInit = Command{
	Name:     "init",
	Synopsis: "write a default config file",
	Brief:    "Write a default config file",
	Usage:    "combofind init",
	Description: `Writes a commented config to ~/.config/combo-finder/config.toml
(or $XDG_CONFIG_HOME/combo-finder/config.toml). An existing file is
left untouched.`,
	SeeAlso: []string{"combofind(1)", "combofind-check(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "combofind version",
	SeeAlso:  []string{"combofind(1)"},
}

// Subcommands is the ordered list of all subcommands.
var Subcommands = []Command{
	CmdScan,
	CmdWatch,
	CmdCompress,
	CmdStats,
	CmdEnqueue,
	CmdWorker,
	CmdCheck,
	CmdInit,
	CmdVersion,
}

// Lookup returns the subcommand with the given name.
func Lookup(name string) (Command, bool) {
	for _, c := range Subcommands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}
