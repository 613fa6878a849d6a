package action

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned for an action identifier the plugin does not provide.
var ErrUnknownAction = errors.New("unknown action")

func errUnknownAction(uuid string) error {
	return fmt.Errorf("%w: %q", ErrUnknownAction, uuid)
}
