package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itiky/edit-session/model"
)

// ErrApplyFailed is returned by the OK command when nothing was committed.
var ErrApplyFailed = errors.New("apply changes failed")

// ParseCommand converts a command name into a model.Command.
func ParseCommand(name string) (model.Command, error) {
	cmd := model.Command(strings.ToLower(strings.TrimSpace(name)))
	switch cmd {
	case model.OkCommand, model.UndoCommand, model.ResetCommand:
		return cmd, nil
	}

	return "", fmt.Errorf("command (%s): unknown", name)
}

// Commands returns the commands the UI layer can bind.
func Commands() []model.Command {
	return []model.Command{model.OkCommand, model.UndoCommand, model.ResetCommand}
}
