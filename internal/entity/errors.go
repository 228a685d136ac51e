package entity

import "errors"

var (
	ErrLeadNotFound         = errors.New("lead not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrFollowUpNotFound     = errors.New("follow-up not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
