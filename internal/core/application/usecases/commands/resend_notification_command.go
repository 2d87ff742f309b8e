package commands

import (
	"errors"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/guard"
)

var (
	ErrResendNotificationCommandIsNotConstructed = errors.New(
		"ResendNotificationCommand must be created via NewResendNotificationCommand constructor",
	)
)

// ResendNotificationCommand represents an explicit operator request to retry
// a failed notification. Only failed records are eligible; the dispatcher
// never retries on its own.
type ResendNotificationCommand struct { //nolint:recvcheck //using for validation
	recordID kernel.UUID

	guard guard.ConstructorGuard
}

// NewResendNotificationCommand creates a resend command for the given record.
func NewResendNotificationCommand(recordID kernel.UUID) (ResendNotificationCommand, error) {
	cmd := ResendNotificationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setRecordID(recordID); err != nil {
		return ResendNotificationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ResendNotificationCommand) Validate() error {
	return c.guard.Validate(ErrResendNotificationCommandIsNotConstructed)
}

// RecordID returns the notification record to retry.
func (c ResendNotificationCommand) RecordID() kernel.UUID {
	return c.recordID
}

func (c *ResendNotificationCommand) setRecordID(recordID kernel.UUID) error {
	if err := recordID.Validate(); err != nil {
		return err
	}

	c.recordID = recordID
	return nil
}
