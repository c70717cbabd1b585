package session

import (
	"image/color"
	"strconv"
	"time"

	"github.com/parterm-dev/parterm/trigger"
	"github.com/parterm-dev/parterm/wire"
)

// defaultHighlightBg is used when a Highlight action's value isn't a parsable
// "#RRGGBB" color (e.g. the author left it blank to mean "just flag it").
var defaultHighlightBg = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}

// highlightTTL bounds how long a trigger highlight overlay survives before
// the session poll loop's Terminal.ClearExpiredHighlights call clears it, so
// a one-off match doesn't paint a row forever.
const highlightTTL = 10 * time.Second

// parseHighlightColor parses a "#RRGGBB" string, falling back to
// defaultHighlightBg for anything else.
func parseHighlightColor(s string) color.Color {
	if len(s) != 7 || s[0] != '#' {
		return defaultHighlightBg
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return defaultHighlightBg
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
}

// scanTriggers runs the session's trigger registry against every row the
// terminal marked dirty since the last scan, one regex pass per touched
// line rather than per byte written.
func (s *Session) scanTriggers() {
	if s.Triggers == nil || !s.Term.HasDirty() {
		return
	}

	rows := map[int]struct{}{}
	for _, pos := range s.Term.DirtyCells() {
		rows[pos.Row] = struct{}{}
	}
	s.Term.ClearAllDirty()

	now := time.Now().Unix()
	for row := range rows {
		line := s.Term.LineContent(row)
		if line == "" {
			continue
		}
		for _, result := range s.Triggers.Scan(row, line) {
			s.Broadcast(wire.MsgTriggerMatched, &wire.TriggerMatched{
				TriggerID: result.Match.PatternID,
				Row:       int32(result.Match.Row),
				Col:       int32(result.Match.Col),
				EndCol:    int32(result.Match.EndCol),
				Text:      result.Match.Text,
				Captures:  result.Match.Captures,
				Timestamp: now,
			}, wire.EventTrigger)

			s.applyTriggerActions(result, now)
		}
	}
}

func (s *Session) applyTriggerActions(result trigger.Result, now int64) {
	for _, action := range result.Actions {
		switch action.Kind {
		case trigger.ActionHighlight:
			bg := parseHighlightColor(action.Value)
			s.Term.HighlightRange(result.Match.Row, result.Match.Col, result.Match.EndCol, bg, highlightTTL)
			s.Broadcast(wire.MsgActionNotify, &wire.ActionNotify{
				TriggerID: result.Match.PatternID,
				Message:   action.Value,
			}, wire.EventAction)
		case trigger.ActionNotify:
			s.Broadcast(wire.MsgActionNotify, &wire.ActionNotify{
				TriggerID: result.Match.PatternID,
				Message:   action.Value,
			}, wire.EventAction)
		case trigger.ActionMarkLine:
			s.Broadcast(wire.MsgActionMarkLine, &wire.ActionMarkLine{
				TriggerID: result.Match.PatternID,
				Row:       int32(result.Match.Row),
				Label:     action.Value,
			}, wire.EventAction)
		case trigger.ActionSendText:
			_, _ = s.Shell.Write([]byte(action.Value))
		case trigger.ActionSetVariable, trigger.ActionRunCommand, trigger.ActionPlaySound:
			// No dedicated wire message; surfaced through ActionNotify so a
			// client can still react without a protocol change per kind.
			s.Broadcast(wire.MsgActionNotify, &wire.ActionNotify{
				TriggerID: result.Match.PatternID,
				Message:   action.Value,
			}, wire.EventAction)
		case trigger.ActionStopPropagation:
			// Handled by Registry.Scan truncating the action list; nothing
			// to do here.
		}
	}
}
