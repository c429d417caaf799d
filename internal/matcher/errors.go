package matcher

import (
	"errors"
	"fmt"

	"github.com/OperacionalChopp/botchopp/internal/knowledge"
)

// ErrUnknownSelection is returned when a menu selection names no entry
var ErrUnknownSelection = errors.New("unknown menu selection")

// SelectionError carries the id of an unresolvable menu selection
type SelectionError struct {
	ID knowledge.EntryID
}

func (e SelectionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownSelection, e.ID)
}

func (e SelectionError) Code() string {
	return "UNKNOWN_SELECTION"
}

func (e SelectionError) Message() string {
	return UnknownSelectionText
}

func (e SelectionError) Is(target error) bool {
	return target == ErrUnknownSelection
}

// IsUnknownSelection determines if an error comes from Resolve
func IsUnknownSelection(err error) bool {
	return errors.Is(err, ErrUnknownSelection)
}
