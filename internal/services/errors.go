package services

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentRequired      = errors.New("payment required")
	ErrDeploymentInProgress = errors.New("deployment already in progress")
)

// AlreadyDeployedError carries the URL of the existing deployment so callers
// can redirect to it.
type AlreadyDeployedError struct {
	ProjectID string
	URL       string
}

func (e *AlreadyDeployedError) Error() string {
	return fmt.Sprintf("project %s already deployed at %s", e.ProjectID, e.URL)
}
