package cartridge

import "github.com/a-box31/Gameboy/internal/state"

func newCartState() *state.State {
	return state.New()
}

func readCartState(s *state.State) *state.State {
	return state.FromBytes(s.Bytes())
}
