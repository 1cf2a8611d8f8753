package schedule

import (
	"strconv"
	"strings"

	"classfree/internal/model"
)

// Slot is one (day, hour) occupancy fact derived from a schedule string.
type Slot struct {
	Day  model.Day
	Hour model.HourSlot
}

// Parsed is the structured result of parsing one schedule string.
type Parsed struct {
	// Slots is the cross-product of every (days, hours) block in the
	// string, in block order, days outer and hours inner.
	Slots []Slot
	// Room is the raw room text: every token after the last day/hour
	// token, joined with single spaces. Not yet normalized.
	Room string
	// Instructor is the free-text prefix before the first day/hour token,
	// if any. It never influences slot or room derivation.
	Instructor string
}

// Parse derives (day, hour, room) facts from a free-text schedule string
// such as "Indrani Talukdar / Raviprasad Aduri M W 2 LT4".
//
// The string has no delimiter between the instructor names and the
// day/hour/room structure, so the parser scans classified tokens left to
// right and ignores unrecognized tokens entirely. Days accumulate until
// hours start; a day code arriving after hours have been collected closes
// the current block and opens a new one, which is what splits
// "T TH 2 F 10 C302" into {T,TH}x{2} and {F}x{10}.
//
// ok is false when the string yields no usable schedule: no (day, hour)
// pairs at all, or pairs with no trailing room text to attach them to.
// Such records are expected in legacy data and are simply skipped upstream.
func Parse(raw string) (Parsed, bool) {
	tokens := Tokenize(raw)
	if len(tokens) == 0 {
		return Parsed{}, false
	}

	var (
		slots []Slot
		days  []model.Day
		hours []model.HourSlot

		// boundary is the index of the last day/hour token; everything
		// after it is room text. firstTime is the index of the first
		// day/hour token; everything before it is the instructor prefix.
		boundary  = -1
		firstTime = -1
	)

	// flush materializes the pending block. A block missing either its
	// days or its hours is incomplete and silently emits nothing.
	flush := func() {
		if len(days) == 0 || len(hours) == 0 {
			return
		}
		for _, d := range days {
			for _, h := range hours {
				slots = append(slots, Slot{Day: d, Hour: h})
			}
		}
	}

	for i, tok := range tokens {
		switch tok.Kind {
		case TokenDay:
			if len(hours) > 0 {
				// A new day after collected hours starts a new block.
				flush()
				days = days[:0]
				hours = hours[:0]
			}
			d, _ := model.ParseDay(tok.Text)
			days = appendDay(days, d)
		case TokenHour:
			n, _ := strconv.Atoi(tok.Text)
			hours = appendHour(hours, model.HourSlot(n))
		default:
			// Instructor names and the like: passed over, never examined.
			continue
		}
		boundary = i
		if firstTime == -1 {
			firstTime = i
		}
	}
	flush()

	if len(slots) == 0 {
		// Nothing recognizable; the whole record is unparseable.
		return Parsed{}, false
	}
	if boundary >= len(tokens)-1 {
		// Slots but no trailing room text: the facts cannot be placed in
		// any room bucket, so the record is discarded as well.
		return Parsed{}, false
	}

	return Parsed{
		Slots:      slots,
		Room:       joinTokens(tokens[boundary+1:]),
		Instructor: joinTokens(tokens[:firstTime]),
	}, true
}

// appendDay keeps days an insertion-ordered set.
func appendDay(days []model.Day, d model.Day) []model.Day {
	for _, have := range days {
		if have == d {
			return days
		}
	}
	return append(days, d)
}

// appendHour keeps hours an insertion-ordered set.
func appendHour(hours []model.HourSlot, h model.HourSlot) []model.HourSlot {
	for _, have := range hours {
		if have == h {
			return hours
		}
	}
	return append(hours, h)
}

func joinTokens(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}
