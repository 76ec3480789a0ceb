package domain

import "errors"

var (
	// ErrTripCodeMismatch is returned when a signup code does not match the trip code.
	ErrTripCodeMismatch = errors.New("trip code mismatch")
	// ErrTripCodeTooShort rejects a replacement trip code below the minimum length.
	ErrTripCodeTooShort = errors.New("trip code too short")
	// ErrNameTooShort rejects a display name below three characters.
	ErrNameTooShort = errors.New("name too short")
	// ErrUserNotFound is returned when a user id has no stored record.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuestionNotFound indicates a question id is absent from the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrNoActiveQuestion is returned when an answer arrives with no live round.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrAlreadyAnswered is returned when a participant re-answers a question id.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrRoundOver is returned when an answer arrives after the countdown expired.
	ErrRoundOver = errors.New("round over")
	// ErrSpinCooldown is returned while the reward-wheel cooldown is active.
	ErrSpinCooldown = errors.New("spin cooldown active")
	// ErrNotAdmin is returned when a participant sends a host-only operation.
	ErrNotAdmin = errors.New("operation requires admin")
	// ErrEmptyMessage rejects blank messages to the host.
	ErrEmptyMessage = errors.New("empty message")
)
