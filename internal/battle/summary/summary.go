// Package summary renders end-of-encounter reports for people.
package summary

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/partybattle/internal/battle"
)

// Writer renders reports with locale-aware number formatting.
type Writer struct {
	out     io.Writer
	printer *message.Printer
}

// NewWriter returns a Writer for tag. An undetermined tag uses English.
func NewWriter(out io.Writer, tag language.Tag) *Writer {
	if tag == language.Und {
		tag = language.English
	}
	return &Writer{out: out, printer: message.NewPrinter(tag)}
}

var reasonText = map[battle.Termination]string{
	battle.PartyDefeated: "the party was defeated",
	battle.TurnCap:       "the turn cap was reached",
	battle.Stalled:       "no one could act",
}

// Report writes one encounter.
func (w *Writer) Report(r battle.Report) error {
	var b strings.Builder
	p := w.printer
	reason, ok := reasonText[r.Reason]
	if !ok {
		reason = string(r.Reason)
	}
	p.Fprintf(&b, "Encounter %s ended after %d turns: %s.\n", r.EncounterID, r.Turns, reason)
	p.Fprintf(&b, "Party deaths: %d. Opposition deaths: %d.\n", r.PartyDeaths, r.OppositionDeaths)
	for _, faction := range []battle.Faction{battle.Party, battle.Opposition} {
		members := r.Faction(faction)
		if len(members) == 0 {
			continue
		}
		p.Fprintf(&b, "\n%s\n", factionTitle(faction))
		for _, c := range members {
			w.combatant(&b, c)
		}
	}
	_, err := io.WriteString(w.out, b.String())
	return err
}

func (w *Writer) combatant(b *strings.Builder, c battle.CombatantReport) {
	p := w.printer
	state := "alive"
	if !c.Alive {
		state = "fallen"
	}
	p.Fprintf(b, "  [%d] %s (%s) HP %d/%d MP %d/%d status %s\n",
		c.Slot, c.Name, state, c.HP, c.HPMax, c.MP, c.MPMax, c.Status)
	t := c.Telemetry
	p.Fprintf(b, "      dealt %d, received %d, healed %d, whoopsies %d, deaths %d, karma %d, fitness %.1f\n",
		t.DamageDealt, t.DamageReceived, t.HealingDealt, t.Whoopsie, t.Deaths, t.Karma, c.Fitness)
	if casts := castLine(t.Casts); casts != "" {
		p.Fprintf(b, "      casts: %s\n", casts)
	}
}

func castLine(casts map[battle.Ability]int) string {
	var parts []string
	for _, a := range battle.Abilities() {
		if n := casts[a]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s x%d", a, n))
		}
	}
	return strings.Join(parts, ", ")
}

func factionTitle(f battle.Faction) string {
	if f == battle.Party {
		return "Party"
	}
	return "Opposition"
}

// Totals aggregates a run of encounters.
type Totals struct {
	Encounters       int
	Turns            int
	PartyDeaths      int
	OppositionDeaths int
	Reasons          map[battle.Termination]int
}

// Add folds r into the totals.
func (t *Totals) Add(r battle.Report) {
	if t.Reasons == nil {
		t.Reasons = map[battle.Termination]int{}
	}
	t.Encounters++
	t.Turns += r.Turns
	t.PartyDeaths += r.PartyDeaths
	t.OppositionDeaths += r.OppositionDeaths
	t.Reasons[r.Reason]++
}

// AverageTurns returns the mean encounter length.
func (t Totals) AverageTurns() float64 {
	if t.Encounters == 0 {
		return 0
	}
	return float64(t.Turns) / float64(t.Encounters)
}

// Totals writes the aggregate of a run.
func (w *Writer) Totals(t Totals) error {
	var b strings.Builder
	p := w.printer
	p.Fprintf(&b, "%d encounters, %d turns (%.2f per encounter).\n", t.Encounters, t.Turns, t.AverageTurns())
	p.Fprintf(&b, "Party deaths: %d. Opposition deaths: %d.\n", t.PartyDeaths, t.OppositionDeaths)
	for _, reason := range []battle.Termination{battle.PartyDefeated, battle.TurnCap, battle.Stalled} {
		if n := t.Reasons[reason]; n > 0 {
			p.Fprintf(&b, "  %s: %d\n", reason, n)
		}
	}
	_, err := io.WriteString(w.out, b.String())
	return err
}
