package help

import (
	"fmt"
	"strings"
	"time"
)

const manual = "Combo Finder Manual"

// Environment lists the variables combofind reads, shown on the top-level
// man page.
var Environment = []Flag{
	{Name: "COMBOFIND_REDIS_URL", Desc: "Overrides [worker] redis_url."},
	{Name: "COMBOFIND_DATABASE_URL", Desc: "Overrides [worker] database_url."},
	{Name: "XDG_CONFIG_HOME", Desc: "Base directory of combo-finder/config.toml."},
	{Name: "XDG_CACHE_HOME", Desc: "Base directory of the default scan cache."},
}

// FormatRoff renders a subcommand as a roff man page (section 1). An empty
// date means today; pass a fixed date for reproducible output.
func FormatRoff(c Command, date string) string {
	var b strings.Builder
	writeTH(&b, strings.ToUpper(c.ManName()), date)

	section(&b, "NAME")
	fmt.Fprintf(&b, "%s \\- %s\n", escapeRoff(c.ManName()), escapeRoff(c.Synopsis))

	section(&b, "SYNOPSIS")
	b.WriteString(".B " + escapeRoff(c.Usage) + "\n")

	if c.Description != "" {
		section(&b, "DESCRIPTION")
		writeParagraphs(&b, c.Description)
	}

	if len(c.Args) > 0 || len(c.Flags) > 0 {
		section(&b, "OPTIONS")
		for _, a := range c.Args {
			name := a.Name
			if a.Optional {
				name = "[" + name + "]"
			}
			tagged(&b, name, a.Desc)
		}
		for _, f := range c.Flags {
			tagged(&b, f.Name, f.Desc)
		}
	}

	if len(c.Examples) > 0 {
		section(&b, "EXAMPLES")
		b.WriteString(".nf\n")
		for _, e := range c.Examples {
			b.WriteString(escapeRoff(e) + "\n")
		}
		b.WriteString(".fi\n")
	}

	seeAlso(&b, c.SeeAlso)
	return b.String()
}

// FormatRoffTopLevel renders combofind.1 with a COMMANDS section listing subs.
func FormatRoffTopLevel(top Command, subs []Command, date string) string {
	var b strings.Builder
	writeTH(&b, "COMBOFIND", date)

	section(&b, "NAME")
	fmt.Fprintf(&b, "combofind \\- %s\n", escapeRoff(top.Synopsis))

	section(&b, "SYNOPSIS")
	b.WriteString(".B combofind\n.I path\n.RI [ strictness ] \" \" [ out ]\n")
	b.WriteString(".br\n.B combofind\n.I command\n.RI [ options ]\n")

	section(&b, "DESCRIPTION")
	writeParagraphs(&b, `combofind scans Slippi replays for punishes that end in a kill and
writes them as a Dolphin playback queue.

Strictness is a number between 0 and 1. Higher values demand longer,
more damaging combos with more hits.`)

	section(&b, "COMMANDS")
	for _, s := range subs {
		tagged(&b, s.tableUsage(), s.Brief)
	}

	section(&b, "ENVIRONMENT")
	for _, e := range Environment {
		tagged(&b, e.Name, e.Desc)
	}

	section(&b, "FILES")
	tagged(&b, "~/.config/combo-finder/config.toml", "Configuration file.")
	tagged(&b, "combos.json", "Default playlist written by scan and watch.")

	section(&b, "EXIT STATUS")
	b.WriteString("0 on success; 1 on invalid arguments, a missing input path, or any failed check.\n")

	refs := make([]string, len(subs))
	for i, s := range subs {
		refs[i] = s.ManName() + "(1)"
	}
	seeAlso(&b, refs)
	return b.String()
}

func writeTH(b *strings.Builder, name, date string) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	fmt.Fprintf(b, ".TH %s 1 %q %q %q\n", name, date, "combofind "+Version, manual)
}

func section(b *strings.Builder, name string) {
	b.WriteString(".SH " + name + "\n")
}

// tagged writes a .TP entry with a bold tag.
func tagged(b *strings.Builder, tag, body string) {
	fmt.Fprintf(b, ".TP\n.B %s\n%s\n", escapeRoff(tag), escapeRoff(body))
}

func seeAlso(b *strings.Builder, refs []string) {
	if len(refs) == 0 {
		return
	}
	section(b, "SEE ALSO")
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = manRef(ref)
	}
	b.WriteString(strings.Join(out, ",\n") + "\n")
}

// escapeRoff escapes backslashes, leading dots and hyphens.
func escapeRoff(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n.", "\n\\&.")
	if strings.HasPrefix(s, ".") {
		s = "\\&" + s
	}
	return strings.ReplaceAll(s, "-", "\\-")
}

// writeParagraphs writes text line by line; runs of blank lines become a
// single .PP and indented lines are kept as no-fill blocks.
func writeParagraphs(b *strings.Builder, text string) {
	blank, verbatim := false, false
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.TrimSpace(line) == "":
			if verbatim {
				b.WriteString(".fi\n")
				verbatim = false
			}
			if !blank {
				b.WriteString(".PP\n")
			}
			blank = true
			continue
		case strings.HasPrefix(line, "  ") && !verbatim:
			b.WriteString(".nf\n")
			verbatim = true
		case !strings.HasPrefix(line, "  ") && verbatim:
			b.WriteString(".fi\n")
			verbatim = false
		}
		blank = false
		b.WriteString(escapeRoff(line) + "\n")
	}
	if verbatim {
		b.WriteString(".fi\n")
	}
}

// manRef turns "combofind-scan(1)" into ".BR combofind\-scan (1)".
func manRef(ref string) string {
	name, sec, ok := strings.Cut(ref, "(")
	if !ok {
		return ".B " + escapeRoff(ref)
	}
	return fmt.Sprintf(".BR %s (%s", escapeRoff(name), sec)
}
