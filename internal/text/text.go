package text

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/DaanHessen/lifeline/internal/engine"
)

// Density controls how much prose the narrator writes.
type Density string

const (
	DensityConcise  Density = "concise"
	DensityStandard Density = "standard"
	DensityRich     Density = "rich"
)

// ParseDensity falls back to standard for unknown values.
func ParseDensity(s string) Density {
	switch Density(strings.ToLower(strings.TrimSpace(s))) {
	case DensityConcise:
		return DensityConcise
	case DensityRich:
		return DensityRich
	default:
		return DensityStandard
	}
}

// Scene is what the narrator needs to describe a year.
type Scene struct {
	Character engine.Character
	Year      int
	// Event is nil for a quiet year.
	Event *engine.GameEvent
	// Available marks the choices the character can take; others are listed as unavailable.
	Available map[string]bool
}

// Narrator is the interface used by the game to render prose.
type Narrator interface {
	Scene(ctx context.Context, sc Scene) (string, error)
	Outcome(ctx context.Context, sc Scene, choice engine.GameChoice, changes []engine.StatChange) (string, error)
	Epitaph(ctx context.Context, c engine.Character, end engine.EndCheck, score int) (string, error)
}

// templateNarrator is a deterministic, offline narrator rendering markdown.
type templateNarrator struct {
	p       *message.Printer
	density Density
}

var sharedCatalog *catalog.Builder

func init() {
	b, err := newCatalog()
	if err != nil {
		panic(errors.Wrap(err, "build message catalog"))
	}
	sharedCatalog = b
}

// NewTemplateNarrator returns a narrator for lang at the given density.
func NewTemplateNarrator(lang engine.Language, density Density) Narrator {
	return &templateNarrator{
		p:       message.NewPrinter(Tag(lang), message.Catalog(sharedCatalog)),
		density: density,
	}
}

// StatLabel returns the localized stat name.
func StatLabel(lang engine.Language, key engine.StatKey) string {
	p := message.NewPrinter(Tag(lang), message.Catalog(sharedCatalog))
	return p.Sprintf(statLabels[key])
}

func (t *templateNarrator) stat(key engine.StatKey) string { return t.p.Sprintf(statLabels[key]) }

func (t *templateNarrator) Scene(ctx context.Context, sc Scene) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := sc.Character
	var b strings.Builder
	b.WriteString("## " + t.p.Sprintf(msgHeader, c.Name, c.Age) + "\n")
	b.WriteString(t.p.Sprintf(msgYear, sc.Year) + " | " + t.p.Sprintf(msgPhase, t.p.Sprintf(phaseLabels[c.Phase()])) + "\n\n")
	if t.density != DensityConcise {
		b.WriteString("### " + t.p.Sprintf(msgStats) + "\n")
		for _, key := range engine.AllStats {
			v, _ := c.Stats.Get(key)
			b.WriteString(fmt.Sprintf("- %s: %d\n", t.stat(key), v))
		}
		b.WriteString("\n")
	}
	if t.density == DensityRich {
		b.WriteString(t.p.Sprintf(msgOutlook, engine.WellBeingScore(c.Stats), engine.LifeExpectancy(c.Stats, c.Age)) + "\n\n")
	}
	if sc.Event == nil {
		b.WriteString(t.p.Sprintf(msgQuietYear) + "\n")
		return b.String(), nil
	}
	ev := sc.Event
	b.WriteString("### " + ev.Title + "\n")
	if t.density != DensityConcise && ev.Description != "" {
		b.WriteString(ev.Description + "\n")
	}
	b.WriteString("\n### " + t.p.Sprintf(msgChoices) + "\n")
	for i, ch := range ev.Choices {
		line := fmt.Sprintf("%d. %s", i+1, ch.Text)
		if t.density == DensityRich {
			if eff := t.effects(ch.Effect.Changes("", 0)); eff != "" {
				line += " (" + eff + ")"
			}
			if chance, ok := successChance(ch, c.Stats); ok {
				line += " [" + t.p.Sprintf(msgChance, chance) + "]"
			}
		}
		if sc.Available != nil && !sc.Available[ch.ID] {
			line += " " + t.p.Sprintf(msgLocked)
		}
		b.WriteString(line + "\n")
	}
	return b.String(), nil
}

// successChance is the rounded percentage for choices gated on stat minimums.
func successChance(ch engine.GameChoice, stats engine.Stats) (int, bool) {
	r := ch.Requirements
	if r == nil || len(r.MinStats) == 0 {
		return 0, false
	}
	p, err := engine.SuccessProbability(r.MinStats, stats)
	if err != nil {
		return 0, false
	}
	return int(math.Round(p * 100)), true
}

func (t *templateNarrator) effects(changes []engine.StatChange) string {
	parts := make([]string, 0, len(changes))
	for _, sc := range changes {
		parts = append(parts, fmt.Sprintf("%s %+d", t.stat(sc.Stat), sc.Delta))
	}
	return strings.Join(parts, ", ")
}

func (t *templateNarrator) Outcome(ctx context.Context, sc Scene, choice engine.GameChoice, changes []engine.StatChange) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(t.p.Sprintf(msgYouChose, choice.Text) + "\n\n")
	if len(changes) == 0 {
		b.WriteString(t.p.Sprintf(msgNoChange) + "\n")
		return b.String(), nil
	}
	for _, c := range changes {
		b.WriteString(fmt.Sprintf("- %s %+d\n", t.stat(c.Stat), c.Delta))
	}
	return b.String(), nil
}

func (t *templateNarrator) Epitaph(ctx context.Context, c engine.Character, end engine.EndCheck, score int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("## " + t.p.Sprintf(msgDied, c.Name, c.Age) + "\n\n")
	switch end.Reason {
	case engine.EndHealth:
		b.WriteString(t.p.Sprintf(msgCauseHealth) + "\n")
	case engine.EndOldAge:
		b.WriteString(t.p.Sprintf(msgCauseAge) + "\n")
	}
	b.WriteString(t.p.Sprintf(msgScore, score) + "\n")
	return b.String(), nil
}
