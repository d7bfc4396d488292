package common

import "errors"

var ErrModulePaused = errors.New("module paused")

// PauseView exposes the pause status of a named module.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the call when the module is paused.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// CombinedPause reports a module as paused when any of the wrapped views does.
// A distributor is considered paused if either itself or its controlling
// collaborator is paused, so mutating entry points consult the OR of both
// flags.
type CombinedPause struct {
	Views []PauseView
}

// IsPaused implements the PauseView interface.
func (c CombinedPause) IsPaused(module string) bool {
	for _, v := range c.Views {
		if v != nil && v.IsPaused(module) {
			return true
		}
	}
	return false
}

// FlagPause is a PauseView backed by a single boolean, ignoring the module
// name. It models a contract-level paused flag.
type FlagPause struct {
	Paused bool
}

// IsPaused implements the PauseView interface.
func (f FlagPause) IsPaused(string) bool { return f.Paused }
