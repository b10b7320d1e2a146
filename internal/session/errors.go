package session

import "errors"

var (
	ErrUnknownQuestion  = errors.New("question is not part of this session")
	ErrSessionClosed    = errors.New("session already submitted")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrAttemptTerminal  = errors.New("attempt is already in a terminal state")
	ErrAutoSaveRunning  = errors.New("auto-save already running")
	ErrNotStarted       = errors.New("session not started")
)
