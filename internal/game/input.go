package game

import (
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Input is one player event. Exactly one of Direction, Action, a cell
// (HasCell) or Submit is set. At is when the event happened; the zero
// value means "now" on the session clock.
type Input struct {
	Direction Direction
	Action    Action
	Cell      int
	HasCell   bool
	Submit    bool
	At        time.Time
}

func DirectionInput(d Direction) Input { return Input{Direction: d} }
func ActionInput(a Action) Input       { return Input{Action: a} }
func CellInput(cell int) Input         { return Input{Cell: cell, HasCell: true} }
func SubmitInput() Input               { return Input{Submit: true} }

// SubmitValue is the canonical value of an explicit scan submit.
const SubmitValue = "submit"

// ParseInput turns a canonical wire value into an Input for the given game:
// a direction name, a cell index or "submit", or an action name.
func ParseInput(kind Kind, value string) (Input, error) {
	switch kind {
	case KindArrow:
		if d, ok := ParseDirection(value); ok {
			return DirectionInput(d), nil
		}
	case KindScan:
		if value == SubmitValue {
			return SubmitInput(), nil
		}
		if cell, err := strconv.Atoi(value); err == nil && cell >= 0 && cell < GridCells {
			return CellInput(cell), nil
		}
	case KindStriker:
		if a, ok := ParseAction(value); ok {
			return ActionInput(a), nil
		}
	default:
		return Input{}, goerr.Wrap(ErrUnknownGame, "cannot parse input", goerr.V("kind", kind))
	}
	return Input{}, goerr.Wrap(ErrInvalidInput, "unrecognized input value",
		goerr.V("kind", kind), goerr.V("value", value))
}
