// Package slptest encodes synthetic replay files for tests.
package slptest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/japanese"

	"github.com/suykerbuyk/combo-finder/internal/melee"
	"github.com/suykerbuyk/combo-finder/internal/slp"
)

const (
	gameStartSize = 0x248
	postFrameSize = 0x25
	gameEndSize   = 0x01
)

// Player occupies one port.
type Player struct {
	Port      int
	Character melee.Character
	CPU       bool
	Name      string
	Code      string
}

// Replay is a match to encode. Frames maps a port to its timeline; frame i
// is written with frame number i-123.
type Replay struct {
	Players []Player
	Frames  map[int][]melee.Frame

	// Live leaves the raw length unset and omits the closing metadata, the
	// way Slippi leaves a file while a match is still being recorded.
	Live bool
}

// Bytes encodes the replay.
func (r Replay) Bytes() ([]byte, error) {
	var raw bytes.Buffer

	raw.WriteByte(slp.EventPayloads)
	raw.WriteByte(1 + 3*3)
	for _, ev := range []struct {
		cmd  byte
		size uint16
	}{{slp.EventGameStart, gameStartSize}, {slp.EventPostFrame, postFrameSize}, {slp.EventGameEnd, gameEndSize}} {
		raw.WriteByte(ev.cmd)
		binary.Write(&raw, binary.BigEndian, ev.size)
	}

	start, err := r.gameStart()
	if err != nil {
		return nil, err
	}
	raw.WriteByte(slp.EventGameStart)
	raw.Write(start)

	frameCount := 0
	for _, frames := range r.Frames {
		frameCount = max(frameCount, len(frames))
	}
	for i := 0; i < frameCount; i++ {
		for port := 0; port < 4; port++ {
			frames := r.Frames[port]
			if i >= len(frames) {
				continue
			}
			raw.WriteByte(slp.EventPostFrame)
			raw.Write(PostFrame(i+melee.FirstFrame, port, frames[i]))
		}
	}

	raw.WriteByte(slp.EventGameEnd)
	raw.WriteByte(2)

	var out bytes.Buffer
	out.Write(slp.RawHeader)
	if r.Live {
		binary.Write(&out, binary.BigEndian, int32(0))
		out.Write(raw.Bytes())
		return out.Bytes(), nil
	}
	binary.Write(&out, binary.BigEndian, int32(raw.Len()))
	out.Write(raw.Bytes())
	out.WriteString("U\x08metadata{}}")
	return out.Bytes(), nil
}

// WriteFile encodes the replay to path, zstd-compressing .slpz paths.
func (r Replay) WriteFile(path string) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}
	if slp.Compressed(path) {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return err
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
	}
	return os.WriteFile(path, data, 0o644)
}

func (r Replay) gameStart() ([]byte, error) {
	p := make([]byte, gameStartSize)
	copy(p, []byte{3, 12, 0, 0})
	for port := 0; port < 4; port++ {
		p[0x65+0x24*port] = byte(slp.Empty)
	}

	for _, pl := range r.Players {
		if pl.Port < 0 || pl.Port > 3 {
			return nil, fmt.Errorf("port %d out of range", pl.Port)
		}
		base := 0x24 * pl.Port
		p[0x64+base] = byte(pl.Character)
		p[0x65+base] = byte(slp.Human)
		if pl.CPU {
			p[0x65+base] = byte(slp.CPU)
		}

		name, err := encodeText(pl.Name, 0x1F)
		if err != nil {
			return nil, fmt.Errorf("name %q: %w", pl.Name, err)
		}
		copy(p[0x1A4+0x1F*pl.Port:], name)

		code, err := encodeText(strings.ReplaceAll(pl.Code, "#", "＃"), 0x0A)
		if err != nil {
			return nil, fmt.Errorf("code %q: %w", pl.Code, err)
		}
		copy(p[0x220+0x0A*pl.Port:], code)
	}
	return p, nil
}

func encodeText(s string, size int) ([]byte, error) {
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	if len(b) >= size {
		return nil, fmt.Errorf("encoded text longer than %d bytes", size-1)
	}
	return b, nil
}

// PostFrame encodes a Post-Frame Update payload, without its command byte,
// for frame number (-123 is the first frame).
func PostFrame(number, port int, f melee.Frame) []byte {
	p := make([]byte, postFrameSize)
	binary.BigEndian.PutUint32(p[0x00:], uint32(int32(number)))
	p[0x04] = byte(port)
	p[0x06] = f.Character.InternalID()
	binary.BigEndian.PutUint16(p[0x07:], uint16(f.State))
	binary.BigEndian.PutUint32(p[0x15:], math.Float32bits(f.Percent))
	binary.BigEndian.PutUint32(p[0x21:], math.Float32bits(f.AnimFrame))
	return p
}

// Timeline repeats one frame n times.
func Timeline(n int, f melee.Frame) []melee.Frame {
	out := make([]melee.Frame, n)
	for i := range out {
		out[i] = f
	}
	return out
}

// Kill returns aligned attacker and defender timelines holding one combo
// that kills the defender, plus the frame index of the first hit and of the
// death. neutral frames of idle play precede the combo.
func Kill(atkChar, defChar melee.Character, neutral int) (atk, def []melee.Frame, firstHit, death int) {
	atk = Timeline(neutral, melee.NewFrame(atkChar, melee.Wait, 0, 0))
	def = Timeline(neutral, melee.NewFrame(defChar, melee.Wait, 0, 10))

	firstHit = len(def)
	for hit := 0; hit < 6; hit++ {
		for i := 0; i < 3; i++ {
			atk = append(atk, melee.NewFrame(atkChar, melee.Attack11, float32(i), 0))
			def = append(def, melee.NewFrame(defChar, melee.DamageHi1, float32(i), float32(20+10*hit)))
		}
	}
	for i := 0; i < 5; i++ {
		atk = append(atk, melee.NewFrame(atkChar, melee.Wait, 0, 0))
		def = append(def, melee.NewFrame(defChar, melee.DownBoundU, float32(i), 80))
	}

	death = len(def)
	for i := 0; i < 3; i++ {
		atk = append(atk, melee.NewFrame(atkChar, melee.Wait, 0, 0))
		def = append(def, melee.NewFrame(defChar, melee.DeadDown, float32(i), 80))
	}
	for i := 0; i < 2; i++ {
		atk = append(atk, melee.NewFrame(atkChar, melee.Wait, 0, 0))
		def = append(def, melee.NewFrame(defChar, melee.Rebirth, float32(i), 0))
	}
	return atk, def, firstHit, death
}
