package slp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/suykerbuyk/combo-finder/internal/melee"
)

// Post-Frame payload offsets.
const (
	pfFrame     = 0x00
	pfPort      = 0x04
	pfFollower  = 0x05
	pfCharacter = 0x06
	pfState     = 0x07
	pfPercent   = 0x15
	pfAnimFrame = 0x21
	pfMinSize   = pfAnimFrame + 4
)

// Game is a fully decoded match. Frames holds one timeline per port; only
// the two occupied ports are populated and both have the same length.
type Game struct {
	Info   *Info
	Frames [4][]melee.Frame

	longest int // longest timeline decoded so far
}

// FrameCount is the length of the populated timelines.
func (g *Game) FrameCount() int {
	for _, f := range g.Frames {
		if len(f) > 0 {
			return len(f)
		}
	}
	return 0
}

// ReadGame decodes every frame of a replay.
func ReadGame(path string) (*Game, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	g, err := DecodeGame(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// DecodeGame is ReadGame over a stream.
func DecodeGame(r io.Reader) (*Game, error) {
	d, err := newDecoder(r)
	if err != nil {
		return nil, err
	}

	g := &Game{}
	for {
		cmd, payload, err := d.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch cmd {
		case EventGameStart:
			if g.Info, err = parseGameStart(payload); err != nil {
				return nil, err
			}
		case EventPostFrame:
			g.addPostFrame(payload)
		}
	}

	if g.Info == nil {
		return nil, ErrNoGameStart
	}
	low, high, err := g.Info.LowHighPorts()
	if err != nil {
		return nil, err
	}

	n := min(len(g.Frames[low]), len(g.Frames[high]))
	for port := range g.Frames {
		if port == low || port == high {
			g.Frames[port] = g.Frames[port][:n]
		} else {
			g.Frames[port] = nil
		}
	}
	return g, nil
}

func (g *Game) addPostFrame(p []byte) {
	if len(p) < pfMinSize || p[pfFollower] != 0 {
		return
	}
	port := int(p[pfPort])
	idx := int(int32(binary.BigEndian.Uint32(p[pfFrame:]))) - melee.FirstFrame
	// Frames arrive in order and rollback only rewinds, so a timeline never
	// grows by more than one frame past the longest one.
	if port >= len(g.Frames) || idx < 0 || idx > g.longest {
		return
	}
	ch, ok := melee.CharacterFromInternal(p[pfCharacter])
	if !ok {
		return
	}

	frame := melee.NewFrame(ch,
		melee.ActionState(binary.BigEndian.Uint16(p[pfState:])),
		math.Float32frombits(binary.BigEndian.Uint32(p[pfAnimFrame:])),
		math.Float32frombits(binary.BigEndian.Uint32(p[pfPercent:])))

	frames := g.Frames[port]
	for len(frames) <= idx {
		frames = append(frames, melee.Frame{})
	}
	// Rollback re-sends a frame; the last copy wins.
	frames[idx] = frame
	g.Frames[port] = frames
	g.longest = max(g.longest, len(frames))
}
