package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownQuestion = errors.New("question not in catalog")
	ErrSetupIncomplete = errors.New("auditor name and location are required")
	ErrSessionState    = errors.New("operation not valid in current session state")
	ErrSessionFinished = errors.New("session already finished")
)
