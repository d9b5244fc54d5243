package rpc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxPremiumHours caps a premium window so its expiry stays within time.Duration.
const MaxPremiumHours = 100 * 365 * 24

var (
	errInvalidBool    = errors.New("invalid boolean")
	errRequired       = errors.New("is required")
	errDurationFormat = errors.New("invalid time format, format must be WITH A SPACE BETWEEN THE NUMBER AND THE UNIT")
	errDurationUnit   = errors.New("invalid time format, unit must be years, months, weeks, days or hours")
	errDurationNotPos = errors.New("time period must be positive")
	errDurationLong   = errors.New("time period must not exceed 100 years")
	errInvalidID      = errors.New("invalid id, expected a positive decimal number")
	errInvalidTeamID  = errors.New("invalid team id, expected a uuid")
)

// ParseBool accepts true/t/y and false/f/n in any case.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "y":
		return true, nil
	case "false", "f", "n":
		return false, nil
	default:
		return false, errInvalidBool
	}
}

func ParseInt(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", strings.TrimSpace(raw))
	}
	return value, nil
}

// ParseHours converts "<integer> <unit>" into whole hours.
func ParseHours(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), " ")
	if len(parts) != 2 {
		return 0, errDurationFormat
	}

	amount, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", parts[0])
	}
	if amount <= 0 {
		return 0, errDurationNotPos
	}

	var perUnit int
	switch strings.ToLower(parts[1]) {
	case "years", "year", "y":
		perUnit = 365 * 24
	case "months", "month", "mo", "m":
		perUnit = 30 * 24
	case "weeks", "week", "w":
		perUnit = 7 * 24
	case "days", "day", "d":
		perUnit = 24
	case "hours", "hour", "hrs", "hr", "h":
		perUnit = 1
	default:
		return 0, errDurationUnit
	}
	if amount > MaxPremiumHours/perUnit {
		return 0, errDurationLong
	}
	return amount * perUnit, nil
}

// ParseID validates a platform user or bot id and returns its canonical form.
func ParseID(raw string) (string, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return "", errInvalidID
	}
	return strconv.FormatInt(value, 10), nil
}

func ParseTeamID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errInvalidTeamID
	}
	return id.String(), nil
}

func parseText(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", errRequired
	}
	return value, nil
}
