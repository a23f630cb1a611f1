package slp

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/width"

	"github.com/suykerbuyk/combo-finder/internal/melee"
)

// PlayerType is the occupant of a port.
type PlayerType uint8

const (
	Human PlayerType = 0
	CPU   PlayerType = 1
	Demo  PlayerType = 2
	Empty PlayerType = 3
)

// Player describes one port from the Game Start event.
type Player struct {
	Port        int
	Type        PlayerType
	Character   melee.Character
	Costume     uint8
	DisplayName string
	ConnectCode string
}

// Occupied reports whether someone is in the port.
func (p Player) Occupied() bool {
	return p.Type != Empty
}

// Info is the match metadata carried by Game Start.
type Info struct {
	Version string
	Players [4]Player
}

// Game Start payload offsets. Blocks repeat per port at the given stride.
const (
	gsCharacter   = 0x64
	gsPlayerType  = 0x65
	gsCostume     = 0x67
	gsPlayerBlock = 0x24

	gsDisplayName    = 0x1A4
	gsDisplayNameLen = 0x1F
	gsConnectCode    = 0x220
	gsConnectCodeLen = 0x0A
)

// LowHighPorts returns the two occupied ports in ascending order.
func (i *Info) LowHighPorts() (int, int, error) {
	ports := make([]int, 0, 2)
	for _, p := range i.Players {
		if p.Occupied() {
			ports = append(ports, p.Port)
		}
	}
	if len(ports) != 2 {
		return 0, 0, fmt.Errorf("%w: %d occupied ports", ErrPlayers, len(ports))
	}
	return ports[0], ports[1], nil
}

// ReadInfo reads only as far as the Game Start event.
func ReadInfo(path string) (*Info, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	info, err := DecodeInfo(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// DecodeInfo is ReadInfo over a stream.
func DecodeInfo(r io.Reader) (*Info, error) {
	d, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	for {
		cmd, payload, err := d.next()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoGameStart
		}
		if err != nil {
			return nil, err
		}
		if cmd == EventGameStart {
			return parseGameStart(payload)
		}
	}
}

func parseGameStart(p []byte) (*Info, error) {
	if len(p) < gsCostume+gsPlayerBlock*3+1 {
		return nil, fmt.Errorf("game start too short: %d bytes", len(p))
	}

	info := &Info{Version: fmt.Sprintf("%d.%d.%d", p[0], p[1], p[2])}
	hasNames := len(p) >= gsDisplayName+gsDisplayNameLen*4
	hasCodes := len(p) >= gsConnectCode+gsConnectCodeLen*4

	for port := range info.Players {
		base := gsPlayerBlock * port
		pl := Player{
			Port:    port,
			Type:    PlayerType(p[gsPlayerType+base]),
			Costume: p[gsCostume+base],
		}
		if pl.Occupied() {
			ch, ok := melee.CharacterFromExternal(p[gsCharacter+base])
			if !ok {
				return nil, fmt.Errorf("port %d: unknown character id %d", port+1, p[gsCharacter+base])
			}
			pl.Character = ch
		}

		if hasNames {
			off := gsDisplayName + gsDisplayNameLen*port
			pl.DisplayName = decodeText(p[off : off+gsDisplayNameLen])
		}
		if hasCodes {
			off := gsConnectCode + gsConnectCodeLen*port
			pl.ConnectCode = decodeText(p[off : off+gsConnectCodeLen])
		}
		info.Players[port] = pl
	}
	return info, nil
}

// decodeText converts a null-terminated Shift-JIS buffer to half-width
// UTF-8. Connect codes are stored with a full-width '＃'.
func decodeText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		s = b
	}
	return width.Narrow.String(string(s))
}
