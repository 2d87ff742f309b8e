package commands

import (
	"errors"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/guard"
)

var (
	ErrConfirmNotificationCommandIsNotConstructed = errors.New(
		"ConfirmNotificationCommand must be created via NewConfirmNotificationCommand constructor",
	)
)

// ConfirmNotificationCommand represents an asynchronous delivery confirmation
// from a transport provider for a previously sent notification.
type ConfirmNotificationCommand struct { //nolint:recvcheck //using for validation
	recordID kernel.UUID

	guard guard.ConstructorGuard
}

// NewConfirmNotificationCommand creates a delivery confirmation command.
func NewConfirmNotificationCommand(recordID kernel.UUID) (ConfirmNotificationCommand, error) {
	cmd := ConfirmNotificationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setRecordID(recordID); err != nil {
		return ConfirmNotificationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmNotificationCommand) Validate() error {
	return c.guard.Validate(ErrConfirmNotificationCommandIsNotConstructed)
}

// RecordID returns the notification record the provider confirmed.
func (c ConfirmNotificationCommand) RecordID() kernel.UUID {
	return c.recordID
}

func (c *ConfirmNotificationCommand) setRecordID(recordID kernel.UUID) error {
	if err := recordID.Validate(); err != nil {
		return err
	}

	c.recordID = recordID
	return nil
}
