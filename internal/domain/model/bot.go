package model

import (
	"time"

	"github.com/ivankudzin/botlist/internal/domain/enums"
)

type Bot struct {
	BotID                    string
	Type                     enums.BotType
	ClaimedBy                *string
	LastClaimed              *time.Time
	Votes                    int
	VoteBanned               bool
	Premium                  bool
	StartPremiumPeriod       *time.Time
	PremiumPeriodLengthHours int
	Owner                    *string
	TeamOwner                *string
	APIToken                 string
	Webhook                  *string
	WebhookSecret            *string
	UpdatedAt                time.Time
}

// PremiumExpiry returns the end of the current premium window, if any.
func (b Bot) PremiumExpiry() (time.Time, bool) {
	if !b.Premium || b.StartPremiumPeriod == nil {
		return time.Time{}, false
	}
	return b.StartPremiumPeriod.Add(time.Duration(b.PremiumPeriodLengthHours) * time.Hour), true
}
