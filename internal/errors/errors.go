// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var ErrEmptySelection = errors.New("no events selected")

type ErrEventNotFound struct {
	TenantID int
	EventID  int
}

func (e *ErrEventNotFound) Error() string {
	return fmt.Sprintf("event with ID %d not found for tenant %d", e.EventID, e.TenantID)
}

func NewEventNotFound(tenantID, eventID int) error {
	return &ErrEventNotFound{TenantID: tenantID, EventID: eventID}
}

type ErrClientNotFound struct {
	TenantID int
	ClientID int
}

func (e *ErrClientNotFound) Error() string {
	return fmt.Sprintf("client with ID %d not found for tenant %d", e.ClientID, e.TenantID)
}

func NewClientNotFound(tenantID, clientID int) error {
	return &ErrClientNotFound{TenantID: tenantID, ClientID: clientID}
}

type ErrSubscriptionNotFound struct {
	TenantID int
}

func (e *ErrSubscriptionNotFound) Error() string {
	return fmt.Sprintf("no subscription for tenant %d", e.TenantID)
}

func NewSubscriptionNotFound(tenantID int) error {
	return &ErrSubscriptionNotFound{TenantID: tenantID}
}

// ErrActivationNotFound covers unknown, expired and already-settled requests.
type ErrActivationNotFound struct {
	RequestID string
}

func (e *ErrActivationNotFound) Error() string {
	return fmt.Sprintf("activation request %q not found or expired", e.RequestID)
}

func NewActivationNotFound(id string) error {
	return &ErrActivationNotFound{RequestID: id}
}

// IsNotFound reports whether err wraps any of the not-found errors above.
func IsNotFound(err error) bool {
	var ev *ErrEventNotFound
	var cl *ErrClientNotFound
	var sub *ErrSubscriptionNotFound
	var act *ErrActivationNotFound
	return errors.As(err, &ev) || errors.As(err, &cl) || errors.As(err, &sub) || errors.As(err, &act)
}
