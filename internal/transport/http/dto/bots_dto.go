package dto

import "time"

type BotSummary struct {
	BotID         string     `json:"bot_id"`
	Type          string     `json:"type"`
	Votes         int        `json:"votes"`
	VoteBanned    bool       `json:"vote_banned"`
	Premium       bool       `json:"premium"`
	PremiumExpiry *time.Time `json:"premium_expiry,omitempty"`
}

type OwnerBotsResponse struct {
	UserID string       `json:"user_id"`
	Items  []BotSummary `json:"items"`
}
