package services

import (
	"context"
	"wa-gateway/contract"
	"wa-gateway/domain"
	"wa-gateway/errors"
)

// RegistrationChecker asks the engine, every time, whether an id has an account.
type RegistrationChecker struct {
	engine contract.Engine
}

func NewRegistrationChecker(engine contract.Engine) *RegistrationChecker {
	return &RegistrationChecker{engine: engine}
}

func (c *RegistrationChecker) IsRegistered(ctx context.Context, id domain.AddressableID) (bool, error) {
	ok, err := c.engine.IsRegisteredUser(ctx, id)
	if err != nil {
		return false, &errors.RegistrationCheckError{Cause: err}
	}
	return ok, nil
}

// Require turns a negative answer into ErrRecipientNotRegistered.
func (c *RegistrationChecker) Require(ctx context.Context, id domain.AddressableID) error {
	ok, err := c.IsRegistered(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrRecipientNotRegistered
	}
	return nil
}
