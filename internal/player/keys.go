package player

import "github.com/gogpu/ggplay"

// Action is what a key press asks the scheduler to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionTogglePause
	ActionSelectFilter
	ActionStrengthDown
	ActionStrengthUp
)

// filterKeys maps the digit keys to filters.
var filterKeys = map[rune]ggplay.FilterKind{
	'1': ggplay.FilterNearest,
	'2': ggplay.FilterBilinear,
	'3': ggplay.FilterGaussian,
	'4': ggplay.FilterLanczos,
	'5': ggplay.FilterBox,
}

// ActionFor maps a key to its action. For ActionSelectFilter the selected
// filter is returned as well.
//
//	space  toggle pause
//	q      quit
//	1-5    nearest, bilinear, gaussian, lanczos, box
//	[ ]    strength down / up
func ActionFor(r rune) (Action, ggplay.FilterKind) {
	switch r {
	case ' ':
		return ActionTogglePause, 0
	case 'q':
		return ActionQuit, 0
	case '[':
		return ActionStrengthDown, 0
	case ']':
		return ActionStrengthUp, 0
	}
	if k, ok := filterKeys[r]; ok {
		return ActionSelectFilter, k
	}
	return ActionNone, 0
}
