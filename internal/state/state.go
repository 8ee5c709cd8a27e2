// Package state provides the byte-cursor save-state primitive used by
// every stateful component, and the self-describing envelope that wraps
// a full save-state payload for round-trip validation.
package state

import (
	"fmt"

	"github.com/cespare/xxhash"
)

// Stater is implemented by anything whose state can be captured and
// restored. Save and Load must visit fields in the same order.
type Stater interface {
	Save(*State)
	Load(*State)
}

// State is an append-only write cursor / sequential read cursor over a
// byte buffer, used to (de)serialize component state.
type State struct {
	raw  []byte
	read int
}

// New returns an empty State ready for writing.
func New() *State {
	return &State{}
}

// FromBytes returns a State ready for reading the given bytes.
func FromBytes(raw []byte) *State {
	return &State{raw: raw}
}

// Bytes returns the accumulated written bytes.
func (s *State) Bytes() []byte {
	return s.raw
}

func (s *State) Write8(v uint8) {
	s.raw = append(s.raw, v)
}

func (s *State) Write16(v uint16) {
	s.raw = append(s.raw, byte(v), byte(v>>8))
}

func (s *State) Write32(v uint32) {
	s.raw = append(s.raw, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (s *State) WriteBool(v bool) {
	if v {
		s.raw = append(s.raw, 1)
	} else {
		s.raw = append(s.raw, 0)
	}
}

func (s *State) WriteData(data []byte) {
	s.raw = append(s.raw, data...)
}

func (s *State) Read8() uint8 {
	v := s.raw[s.read]
	s.read++
	return v
}

func (s *State) Read16() uint16 {
	v := uint16(s.raw[s.read]) | uint16(s.raw[s.read+1])<<8
	s.read += 2
	return v
}

func (s *State) Read32() uint32 {
	v := uint32(s.raw[s.read]) | uint32(s.raw[s.read+1])<<8 |
		uint32(s.raw[s.read+2])<<16 | uint32(s.raw[s.read+3])<<24
	s.read += 4
	return v
}

func (s *State) ReadBool() bool {
	v := s.raw[s.read] != 0
	s.read++
	return v
}

// ReadData fills p from the cursor and advances past it.
func (s *State) ReadData(p []byte) {
	copy(p, s.raw[s.read:s.read+len(p)])
	s.read += len(p)
}

const (
	magic         = "GBSV"
	formatVersion = 1
)

// Envelope wraps a serialized component payload with enough metadata to
// detect a mismatched cartridge or an incompatible format before the
// payload itself is parsed.
type Envelope struct {
	CartridgeTitle string
	HeaderChecksum uint8
	Payload        []byte
}

// ErrIncompatible is returned by DecodeEnvelope when the envelope does not
// match the expected format or cartridge.
var ErrIncompatible = fmt.Errorf("state: incompatible save state")

// EncodeEnvelope serializes env into the self-describing wire format:
// magic, version, title length + title bytes, header checksum, content
// hash of the payload, payload length, payload bytes.
func EncodeEnvelope(env Envelope) []byte {
	s := New()
	s.WriteData([]byte(magic))
	s.Write8(formatVersion)
	title := []byte(env.CartridgeTitle)
	s.Write8(uint8(len(title)))
	s.WriteData(title)
	s.Write8(env.HeaderChecksum)
	s.Write32(uint32(xxhash.Sum64(env.Payload)))
	s.Write32(uint32(len(env.Payload)))
	s.WriteData(env.Payload)
	return s.Bytes()
}

// DecodeEnvelope parses and validates a wire-format save state previously
// produced by EncodeEnvelope. expectTitle/expectChecksum identify the
// cartridge currently loaded; a mismatch is reported via ErrIncompatible.
func DecodeEnvelope(raw []byte, expectTitle string, expectChecksum uint8) (Envelope, error) {
	if len(raw) < len(magic)+2 {
		return Envelope{}, fmt.Errorf("%w: truncated header", ErrIncompatible)
	}
	s := FromBytes(raw)
	gotMagic := make([]byte, len(magic))
	s.ReadData(gotMagic)
	if string(gotMagic) != magic {
		return Envelope{}, fmt.Errorf("%w: bad magic", ErrIncompatible)
	}
	version := s.Read8()
	if version != formatVersion {
		return Envelope{}, fmt.Errorf("%w: version %d not supported", ErrIncompatible, version)
	}
	titleLen := int(s.Read8())
	title := make([]byte, titleLen)
	s.ReadData(title)
	headerChecksum := s.Read8()
	contentHash := s.Read32()
	payloadLen := s.Read32()
	payload := make([]byte, payloadLen)
	s.ReadData(payload)

	if string(title) != expectTitle || headerChecksum != expectChecksum {
		return Envelope{}, fmt.Errorf("%w: cartridge mismatch (state for %q, loaded %q)",
			ErrIncompatible, string(title), expectTitle)
	}
	if uint32(xxhash.Sum64(payload)) != contentHash {
		return Envelope{}, fmt.Errorf("%w: content checksum mismatch", ErrIncompatible)
	}

	return Envelope{
		CartridgeTitle: string(title),
		HeaderChecksum: headerChecksum,
		Payload:        payload,
	}, nil
}
