package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyID      = errors.New("customer id is required")
	ErrEmptyName    = errors.New("customer name is required")
	ErrInvalidEmail = errors.New("email must contain '@'")
)

// Customer represents a buyer known to the sales system.
type Customer struct {
	ID    string
	Name  string
	Email string
}

// NewCustomer builds a customer ensuring required invariants.
func NewCustomer(id, name, email string) (*Customer, error) {
	customer := &Customer{}
	if err := customer.SetID(id); err != nil {
		return nil, err
	}
	if err := customer.SetName(name); err != nil {
		return nil, err
	}
	if err := customer.SetEmail(email); err != nil {
		return nil, err
	}
	return customer, nil
}

// SetID trims and validates the identifier.
func (c *Customer) SetID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	c.ID = id
	return nil
}

// SetName trims and validates the display name.
func (c *Customer) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c.Name = name
	return nil
}

// SetEmail validates the email when present; customers may be registered without one.
func (c *Customer) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	c.Email = email
	return nil
}

// Validate re-applies core invariants for persistence.
func (c *Customer) Validate() error {
	if err := c.SetID(c.ID); err != nil {
		return err
	}
	if err := c.SetName(c.Name); err != nil {
		return err
	}
	return c.SetEmail(c.Email)
}
