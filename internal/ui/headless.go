package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/DaanHessen/lifeline/internal/engine"
	"github.com/DaanHessen/lifeline/internal/session"
	"github.com/DaanHessen/lifeline/internal/store"
	"github.com/DaanHessen/lifeline/internal/text"
	"github.com/DaanHessen/lifeline/internal/util"
)

// maxSimulatedYears stops a headless run that somehow never ends.
const maxSimulatedYears = 150

// Simulate plays a whole life without a terminal. Allocation and choices are drawn from picker so
// a fixed seed replays the same life; the session's own source decides events and death. The
// narration is written to w as markdown and the finished life is archived when backend is set.
func Simulate(ctx context.Context, sess *session.Session, backend store.Backend, cfg util.Config, name string, picker engine.Source, w io.Writer) (store.LifeRecord, error) {
	narrator := text.NewTemplateNarrator(sess.State().Settings.Language, text.ParseDensity(cfg.TextDensity))
	alloc := engine.RandomAllocation(picker)
	sess.StartNewGame(engine.NewCharacter(name, alloc.Stats, time.Now()))

	var end engine.EndCheck
	for year := 0; year < maxSimulatedYears; year++ {
		if err := ctx.Err(); err != nil {
			return store.LifeRecord{}, err
		}
		ev, st, ok := sess.NextEvent()
		var event *engine.GameEvent
		var avail map[string]bool
		choiceID := ""
		var picked engine.GameChoice
		if ok {
			event = &ev
			avail = map[string]bool{}
			choices := engine.AvailableChoices(*st.Character, ev, st.History)
			for _, ch := range choices {
				avail[ch.ID] = true
			}
			if len(choices) > 0 {
				picked = choices[picker.Intn(len(choices))]
				choiceID = picked.ID
			} else {
				// nothing can be taken; drop the event and live a quiet year
				sess.SetCurrentEvent("")
			}
		}
		md, err := narrator.Scene(ctx, text.Scene{Character: *st.Character, Year: st.GameYear, Event: event, Available: avail})
		if err != nil {
			return store.LifeRecord{}, errors.Wrap(err, "narrate scene")
		}
		fmt.Fprintln(w, md)

		res, _, ok := sess.AdvanceYear(choiceID)
		if !ok {
			return store.LifeRecord{}, errors.New("session refused to advance")
		}
		if choiceID != "" {
			out, err := narrator.Outcome(ctx, text.Scene{Character: *st.Character, Year: st.GameYear, Event: event}, picked, res.StatChanges)
			if err != nil {
				return store.LifeRecord{}, errors.Wrap(err, "narrate outcome")
			}
			fmt.Fprintln(w, out)
		}
		if _, err := sess.Autosave(ctx); err != nil {
			return store.LifeRecord{}, err
		}
		if end = sess.CheckEnd(); end.Ended {
			break
		}
	}

	st := sess.State()
	c := *st.Character
	score := engine.CharacterScore(c.Stats, c.Age, st.History.Completed)
	epitaph, err := narrator.Epitaph(ctx, c, end, score)
	if err != nil {
		return store.LifeRecord{}, errors.Wrap(err, "narrate epitaph")
	}
	fmt.Fprintln(w, epitaph)

	rec := store.LifeRecord{Name: c.Name, Age: c.Age, Score: score, Reason: string(end.Reason), Events: len(st.History.Completed)}
	rec.CharacterID, _ = uuid.Parse(c.ID)
	if backend != nil {
		id, err := backend.ArchiveLife(ctx, rec)
		if err != nil {
			return rec, errors.Wrap(err, "archive life")
		}
		rec.ID = id
	}
	return rec, nil
}
