// Package playlist reads and writes Slippi playback queue documents.
package playlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/suykerbuyk/combo-finder/internal/combo"
	"github.com/suykerbuyk/combo-finder/internal/melee"
)

// ErrNotPlaylist is returned for well-formed JSON that is not a queue
// document.
var ErrNotPlaylist = errors.New("not a playlist file")

// SyntaxError reports malformed JSON.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return "playlist syntax: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Entry is one queued clip. Frames use the replay's own numbering, which
// starts at -123.
type Entry struct {
	Path       string `json:"path"`
	StartFrame int    `json:"startFrame"`
	EndFrame   int    `json:"endFrame"`
}

// Document is the playback queue understood by the Slippi player.
type Document struct {
	Mode   string  `json:"mode"`
	Replay string  `json:"replay"`
	Queue  []Entry `json:"queue"`
}

// NewDocument converts combos to queue entries.
func NewDocument(combos []combo.Combo) Document {
	doc := Document{Mode: "queue", Queue: make([]Entry, 0, len(combos))}
	for _, c := range combos {
		doc.Queue = append(doc.Queue, Entry{
			Path:       c.Path,
			StartFrame: c.Start + melee.FirstFrame,
			EndFrame:   c.End + melee.FirstFrame,
		})
	}
	return doc
}

// Combos converts queue entries back to zero-based combos.
func (d Document) Combos() []combo.Combo {
	out := make([]combo.Combo, 0, len(d.Queue))
	for _, e := range d.Queue {
		out = append(out, combo.Combo{
			Path:  e.Path,
			Start: e.StartFrame - melee.FirstFrame,
			End:   e.EndFrame - melee.FirstFrame,
		})
	}
	return out
}

// Marshal renders combos as an indented playlist document.
func Marshal(combos []combo.Combo) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocument(combos), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal playlist: %w", err)
	}
	return append(data, '\n'), nil
}

// Write saves combos to path, replacing any existing file.
func Write(path string, combos []combo.Combo) error {
	data, err := Marshal(combos)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create playlist dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".playlist-*.json")
	if err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write playlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Parse decodes a playlist document. Entries missing a string path or
// numeric frames are skipped.
func Parse(data []byte) ([]combo.Combo, error) {
	if !gjson.ValidBytes(data) {
		var v any
		err := json.Unmarshal(data, &v)
		if err == nil {
			err = errors.New("invalid json")
		}
		return nil, &SyntaxError{Err: err}
	}

	doc := gjson.ParseBytes(data)
	if doc.Get("mode").String() != "queue" {
		return nil, ErrNotPlaylist
	}
	queue := doc.Get("queue")
	if !queue.IsArray() {
		return nil, ErrNotPlaylist
	}

	var d Document
	queue.ForEach(func(_, e gjson.Result) bool {
		path, start, end := e.Get("path"), e.Get("startFrame"), e.Get("endFrame")
		if path.Type != gjson.String || start.Type != gjson.Number || end.Type != gjson.Number {
			return true
		}
		d.Queue = append(d.Queue, Entry{Path: path.String(), StartFrame: int(start.Int()), EndFrame: int(end.Int())})
		return true
	})
	return d.Combos(), nil
}

// ReadFile parses the playlist at path.
func ReadFile(path string) ([]combo.Combo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	combos, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return combos, nil
}

// Append adds combos to the playlist at path, creating it if missing.
// Combos already queued are not added twice. An existing file that cannot
// be parsed is left untouched and reported.
func Append(path string, combos []combo.Combo) error {
	existing, err := ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	queued := make(map[combo.Combo]bool, len(existing))
	for _, c := range existing {
		queued[c] = true
	}
	for _, c := range combos {
		if !queued[c] {
			queued[c] = true
			existing = append(existing, c)
		}
	}
	return Write(path, existing)
}
