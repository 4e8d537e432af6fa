package battle

import "strings"

// Status is a set of boolean conditions on a combatant.
type Status uint16

const (
	Poisoned Status = 1 << iota
	Regened
	Refreshed
	Protected
	Hasted
	Blinked
	Berserked
	Slept
)

var statusNames = []struct {
	flag Status
	name string
}{
	{Poisoned, "poisoned"},
	{Regened, "regened"},
	{Refreshed, "refreshed"},
	{Protected, "protected"},
	{Hasted, "hasted"},
	{Blinked, "blinked"},
	{Berserked, "berserked"},
	{Slept, "slept"},
}

// Names lists the set flags in declaration order.
func (s Status) Names() []string {
	var out []string
	for _, entry := range statusNames {
		if s&entry.flag != 0 {
			out = append(out, entry.name)
		}
	}
	return out
}

func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	return strings.Join(s.Names(), ",")
}

// StatusBoard holds the status flags and cover relation of every slot.
//
// Cover is a partial injection: each slot covers at most one other slot and
// is covered by at most one. A slot that references itself has no bond.
type StatusBoard struct {
	flags     []Status
	coveredBy []int
	covering  []int
}

// NewStatusBoard returns a cleared board for n slots.
func NewStatusBoard(n int) *StatusBoard {
	b := &StatusBoard{
		flags:     make([]Status, n),
		coveredBy: make([]int, n),
		covering:  make([]int, n),
	}
	b.Reset()
	return b
}

// Reset clears every flag and bond.
func (b *StatusBoard) Reset() {
	for i := range b.flags {
		b.flags[i] = 0
		b.coveredBy[i] = i
		b.covering[i] = i
	}
}

// Of returns the flags of slot.
func (b *StatusBoard) Of(slot int) Status {
	return b.flags[slot]
}

// Has reports whether slot carries flag.
func (b *StatusBoard) Has(slot int, flag Status) bool {
	return b.flags[slot]&flag != 0
}

// Set raises flag on slot. Setting a raised flag is a no-op.
func (b *StatusBoard) Set(slot int, flag Status) {
	b.flags[slot] |= flag
}

// Clear lowers flag on slot.
func (b *StatusBoard) Clear(slot int, flag Status) {
	b.flags[slot] &^= flag
}

// CoveredBy returns the slot covering slot, if any.
func (b *StatusBoard) CoveredBy(slot int) (int, bool) {
	c := b.coveredBy[slot]
	return c, c != slot
}

// Covering returns the slot that slot covers, if any.
func (b *StatusBoard) Covering(slot int) (int, bool) {
	t := b.covering[slot]
	return t, t != slot
}

// Cover makes coverer cover target, first breaking the coverer's previous
// charge and the target's previous protector. Covering oneself drops every
// bond the coverer has.
func (b *StatusBoard) Cover(coverer, target int) {
	if coverer == target {
		b.Uncover(coverer)
		return
	}
	if old := b.covering[coverer]; old != coverer {
		b.coveredBy[old] = old
	}
	if prev := b.coveredBy[target]; prev != target {
		b.covering[prev] = prev
	}
	b.covering[coverer] = target
	b.coveredBy[target] = coverer
}

// Uncover breaks both bonds of slot: the one it covers and the one covering it.
func (b *StatusBoard) Uncover(slot int) {
	if t := b.covering[slot]; t != slot {
		b.coveredBy[t] = t
		b.covering[slot] = slot
	}
	if c := b.coveredBy[slot]; c != slot {
		b.covering[c] = c
		b.coveredBy[slot] = slot
	}
}

// release breaks only the bond protecting target.
func (b *StatusBoard) release(target int) {
	if c := b.coveredBy[target]; c != target {
		b.covering[c] = c
		b.coveredBy[target] = target
	}
}
