package help

import (
	"fmt"
	"strings"
	"testing"
)

// expectedTerminal maps command name to exact expected terminal output.
var expectedTerminal = map[string]string{
	"compress": "combofind compress - compress replays to .slpz\n" +
		"\n" +
		"Usage: combofind compress <path> [--remove]\n" +
		"\n" +
		"Arguments:\n" +
		"  path       Replay file or directory\n" +
		"\n" +
		"Flags:\n" +
		"  --remove   Delete each .slp after it is compressed\n" +
		"\n" +
		"Writes a zstd-compressed .slpz next to every .slp replay under path.\n" +
		"Compressed replays are scanned like the originals. Replays that already\n" +
		"have an .slpz are skipped.\n",

	"stats": "combofind stats - summarize a combo playlist\n" +
		"\n" +
		"Usage: combofind stats [playlist.json]\n" +
		"\n" +
		"Arguments:\n" +
		"  playlist.json   Playlist to read (default: scan.output from the config)\n" +
		"\n" +
		"Prints combo counts, total and average combo duration at 60 frames per\n" +
		"second, the five longest combos and the directories with the most\n" +
		"combos.\n",

	"version": "combofind version - print version\n" +
		"\n" +
		"Usage: combofind version\n",
}

func TestFormatTerminal(t *testing.T) {
	for name, expected := range expectedTerminal {
		t.Run(name, func(t *testing.T) {
			cmd, ok := Lookup(name)
			if !ok {
				t.Fatalf("command %q not found", name)
			}
			got := FormatTerminal(cmd)
			if got != expected {
				t.Errorf("FormatTerminal(%q) mismatch.\n--- expected ---\n%s\n--- got ---\n%s\n--- diff ---\n%s",
					cmd.Name, quote(expected), quote(got), diff(expected, got))
			}
		})
	}
}

func TestFormatTerminal_MultipleFlags(t *testing.T) {
	out := FormatTerminal(CmdScan)

	// Every flag on its own line, descriptions in one column.
	col := -1
	for _, f := range CmdScan.Flags {
		line := "  " + f.Name
		i := strings.Index(out, line)
		if i < 0 {
			t.Fatalf("missing flag line %q", f.Name)
		}
		end := strings.IndexByte(out[i:], '\n')
		full := out[i : i+end]
		descAt := strings.Index(full, f.Desc)
		if descAt < 0 {
			t.Fatalf("flag %q description not on its line: %q", f.Name, full)
		}
		if col == -1 {
			col = descAt
		} else if descAt != col {
			t.Errorf("flag %q description at column %d, want %d", f.Name, descAt, col)
		}
	}

	if !strings.Contains(out, "Examples:\n  combofind ~/Slippi") {
		t.Errorf("examples not rendered:\n%s", out)
	}
	if strings.HasSuffix(out, "\n\n") {
		t.Error("trailing blank line")
	}
}

func TestFormatUsage(t *testing.T) {
	got := FormatUsage(TopLevel, Subcommands)

	header := fmt.Sprintf("combofind %s - find combos in Slippi replays\n", Version)
	if !strings.HasPrefix(got, header) {
		t.Errorf("header = %q", strings.SplitN(got, "\n", 2)[0])
	}

	lines := strings.Split(got, "\n")
	start := -1
	for i, l := range lines {
		if l == "Usage:" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		t.Fatalf("no Usage section:\n%s", got)
	}

	// Default form, every subcommand, then help.
	want := len(Subcommands) + 2
	table := lines[start : start+want]
	if !strings.HasPrefix(table[0], "  combofind <path> [strictness] [out]") {
		t.Errorf("first entry = %q", table[0])
	}
	if !strings.HasPrefix(table[want-1], "  combofind help [command]") {
		t.Errorf("last entry = %q", table[want-1])
	}
	for i, s := range Subcommands {
		line := table[i+1]
		if !strings.HasPrefix(line, "  "+s.tableUsage()) || !strings.HasSuffix(line, s.Brief) {
			t.Errorf("entry %d = %q, want %q ... %q", i+1, line, s.tableUsage(), s.Brief)
		}
		if len(line)-len(s.Brief) != len(table[0])-len("Same as scan") {
			t.Errorf("entry %q not aligned with the table", line)
		}
	}
	if lines[start+want] != "" {
		t.Errorf("table not followed by a blank line: %q", lines[start+want])
	}
	if !strings.Contains(got, "Configuration: ~/.config/combo-finder/config.toml\n") {
		t.Error("missing configuration footer")
	}
}

func TestRegistryCompleteness(t *testing.T) {
	expectedNames := []string{
		"scan", "watch", "compress", "stats", "enqueue", "worker", "check", "init", "version",
	}
	if len(Subcommands) != len(expectedNames) {
		t.Fatalf("expected %d subcommands, got %d", len(expectedNames), len(Subcommands))
	}
	for i, name := range expectedNames {
		if Subcommands[i].Name != name {
			t.Errorf("Subcommands[%d].Name = %q, want %q", i, Subcommands[i].Name, name)
		}
		if Subcommands[i].Synopsis == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Synopsis", i, name)
		}
		if Subcommands[i].Usage == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Usage", i, name)
		}
		if Subcommands[i].Brief == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Brief", i, name)
		}
	}
}

func TestLookup(t *testing.T) {
	if c, ok := Lookup("watch"); !ok || c.Name != "watch" {
		t.Errorf("Lookup(watch) = %q, %v", c.Name, ok)
	}
	if _, ok := Lookup("hook"); ok {
		t.Error("Lookup(hook) should fail")
	}
}

func TestManName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "combofind"},
		{"scan", "combofind-scan"},
		{"worker", "combofind-worker"},
		{"cache clear", "combofind-cache-clear"},
	}
	for _, tt := range tests {
		c := Command{Name: tt.name}
		if got := c.ManName(); got != tt.want {
			t.Errorf("Command{Name: %q}.ManName() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEscapeRoff(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`simple text`, `simple text`},
		{`back\slash`, `back\\slash`},
		{`.leading dot`, `\&.leading dot`},
		{"line1\n.line2", "line1\n\\&.line2"},
		{`--flag`, `\-\-flag`},
		{`a-b`, `a\-b`},
		{`.slpz replays`, `\&.slpz replays`},
	}
	for _, tt := range tests {
		got := escapeRoff(tt.input)
		if got != tt.want {
			t.Errorf("escapeRoff(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatRoffStructure(t *testing.T) {
	fixedDate := "2026-02-27"

	for _, cmd := range Subcommands {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatRoff(cmd, fixedDate)

			for _, section := range []string{".TH", ".SH NAME", ".SH SYNOPSIS"} {
				if !strings.Contains(out, section) {
					t.Errorf("FormatRoff(%q) missing required section %q", cmd.Name, section)
				}
			}

			expectedTH := strings.ToUpper(cmd.ManName())
			if !strings.Contains(out, ".TH "+expectedTH) {
				t.Errorf("FormatRoff(%q) .TH should contain %q", cmd.Name, expectedTH)
			}

			if cmd.Description != "" && !strings.Contains(out, ".SH DESCRIPTION") {
				t.Errorf("FormatRoff(%q) has Description but missing .SH DESCRIPTION", cmd.Name)
			}
			if (len(cmd.Args) > 0 || len(cmd.Flags) > 0) && !strings.Contains(out, ".SH OPTIONS") {
				t.Errorf("FormatRoff(%q) has Args/Flags but missing .SH OPTIONS", cmd.Name)
			}
			if len(cmd.Examples) > 0 && !strings.Contains(out, ".SH EXAMPLES") {
				t.Errorf("FormatRoff(%q) has Examples but missing .SH EXAMPLES", cmd.Name)
			}
			if len(cmd.SeeAlso) > 0 && !strings.Contains(out, ".SH SEE ALSO") {
				t.Errorf("FormatRoff(%q) has SeeAlso but missing .SH SEE ALSO", cmd.Name)
			}
		})
	}
}

func TestFormatRoffTopLevelStructure(t *testing.T) {
	out := FormatRoffTopLevel(TopLevel, Subcommands, "2026-02-27")

	for _, section := range []string{
		".TH COMBOFIND 1",
		".SH NAME",
		".SH SYNOPSIS",
		".SH DESCRIPTION",
		".SH COMMANDS",
		".SH ENVIRONMENT",
		".SH FILES",
		".SH EXIT STATUS",
		".SH SEE ALSO",
	} {
		if !strings.Contains(out, section) {
			t.Errorf("FormatRoffTopLevel missing section %q", section)
		}
	}

	for _, cmd := range Subcommands {
		escaped := escapeRoff(cmd.Brief)
		if !strings.Contains(out, escaped) {
			t.Errorf("FormatRoffTopLevel missing subcommand brief %q (escaped: %q)", cmd.Brief, escaped)
		}
	}
}

func TestFormatRoffEscapesFlags(t *testing.T) {
	out := FormatRoff(CmdCompress, "2026-02-27")
	if !strings.Contains(out, `.B \-\-remove`) {
		t.Errorf("FormatRoff(compress) did not escape --remove:\n%s", out)
	}
}

func TestFormatRoffOptionalArgs(t *testing.T) {
	out := FormatRoff(CmdScan, "2026-02-27")
	if !strings.Contains(out, ".TP\n.B path\n") {
		t.Errorf("required arg not plain:\n%s", out)
	}
	if !strings.Contains(out, ".TP\n.B [strictness]\n") {
		t.Errorf("optional arg not bracketed:\n%s", out)
	}
}

func TestWriteParagraphs(t *testing.T) {
	var b strings.Builder
	writeParagraphs(&b, "First line.\n\n\nChecks:\n  - one\n  - two\nDone.")
	want := "First line.\n" +
		".PP\n" +
		"Checks:\n" +
		".nf\n" +
		"  \\- one\n" +
		"  \\- two\n" +
		".fi\n" +
		"Done.\n"
	if got := b.String(); got != want {
		t.Errorf("writeParagraphs mismatch:\n%s", diff(want, got))
	}
}

func TestManRef(t *testing.T) {
	tests := map[string]string{
		"combofind(1)":      ".BR combofind (1)",
		"combofind-scan(1)": `.BR combofind\-scan (1)`,
		"combofind-stats":   `.B combofind\-stats`,
	}
	for in, want := range tests {
		if got := manRef(in); got != want {
			t.Errorf("manRef(%q) = %q, want %q", in, got, want)
		}
	}
}

// quote shows a string with escape sequences visible.
func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// diff lists the lines that differ.
func diff(expected, got string) string {
	el := strings.Split(expected, "\n")
	gl := strings.Split(got, "\n")
	var b strings.Builder
	for i := range max(len(el), len(gl)) {
		var e, g string
		if i < len(el) {
			e = el[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if e != g {
			fmt.Fprintf(&b, "! line %d:\n  exp: %q\n  got: %q\n", i+1, e, g)
		}
	}
	return b.String()
}
