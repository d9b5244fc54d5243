package executor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/ivankudzin/botlist/internal/domain/enums"
	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/repo/postgres"
	"github.com/ivankudzin/botlist/internal/rpc"
)

const (
	minTeamNameLen = 3
	maxTeamNameLen = 64
)

var (
	errNegativeCount   = errors.New("must not be negative")
	errCountTooLarge   = fmt.Errorf("must not exceed %d", math.MaxInt32)
	errPremiumTooLong  = fmt.Errorf("premium window must not exceed %d hours", rpc.MaxPremiumHours)
	errTeamNameLength  = fmt.Errorf("must be between %d and %d characters", minTeamNameLen, maxTeamNameLen)
	errNonPositiveTime = errors.New("time period must be positive")
)

// txHandler executes each action variant against one open transaction and
// records the follow-ups to run after commit.
type txHandler struct {
	tx       Tx
	caller   string
	now      time.Time
	newToken func() string

	log       model.RPCLog
	owners    []string
	allOwners bool
	kick      int64
}

var _ rpc.Handler = (*txHandler)(nil)

func (h *txHandler) loadBot(ctx context.Context, botID string) (model.Bot, error) {
	bot, err := h.tx.GetBotForUpdate(ctx, botID)
	if err != nil {
		if errors.Is(err, postgres.ErrBotNotFound) {
			return model.Bot{}, rpc.NotFoundf("bot %s not found", botID)
		}
		return model.Bot{}, rpc.Persistence("load bot", err)
	}
	return bot, nil
}

func (h *txHandler) saveBot(ctx context.Context, bot model.Bot) error {
	if err := h.tx.UpdateBot(ctx, bot); err != nil {
		if errors.Is(err, postgres.ErrBotNotFound) {
			return rpc.NotFoundf("bot %s not found", bot.BotID)
		}
		return rpc.Persistence("save bot", err)
	}
	h.touchOwner(bot.Owner)
	return nil
}

func (h *txHandler) loadTeam(ctx context.Context, teamID string) (model.Team, error) {
	team, err := h.tx.GetTeamForUpdate(ctx, teamID)
	if err != nil {
		if errors.Is(err, postgres.ErrTeamNotFound) {
			return model.Team{}, rpc.NotFoundf("team %s not found", teamID)
		}
		return model.Team{}, rpc.Persistence("load team", err)
	}
	return team, nil
}

func (h *txHandler) touchOwner(owner *string) {
	if owner == nil || *owner == "" {
		return
	}
	for _, existing := range h.owners {
		if existing == *owner {
			return
		}
	}
	h.owners = append(h.owners, *owner)
}

// setType moves a bot to next when it is currently in one of from.
func (h *txHandler) setType(ctx context.Context, botID string, next enums.BotType, clearClaim bool, from ...enums.BotType) (model.Bot, error) {
	bot, err := h.loadBot(ctx, botID)
	if err != nil {
		return model.Bot{}, err
	}
	allowed := false
	for _, state := range from {
		if bot.Type == state {
			allowed = true
			break
		}
	}
	if !allowed {
		return model.Bot{}, rpc.Conflictf("bot %s is %s", botID, bot.Type)
	}

	bot.Type = next
	if clearClaim {
		bot.ClaimedBy = nil
	}
	if err := h.saveBot(ctx, bot); err != nil {
		return model.Bot{}, err
	}
	return bot, nil
}

func (h *txHandler) BotClaim(ctx context.Context, a rpc.BotClaim) (rpc.Outcome, error) {
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}
	if bot.Type != enums.BotTypePending {
		return rpc.Outcome{}, rpc.Conflictf("bot %s is %s, only pending bots can be claimed", a.BotID, bot.Type)
	}
	if bot.ClaimedBy != nil && *bot.ClaimedBy != h.caller && !a.Force {
		return rpc.Outcome{}, rpc.Conflictf("bot %s is already claimed by %s, set force to take it over", a.BotID, *bot.ClaimedBy)
	}

	caller := h.caller
	now := h.now
	bot.ClaimedBy = &caller
	bot.LastClaimed = &now
	if err := h.saveBot(ctx, bot); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s is now claimed by %s", a.BotID, h.caller)), nil
}

func (h *txHandler) BotUnclaim(ctx context.Context, a rpc.BotUnclaim) (rpc.Outcome, error) {
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}
	if bot.ClaimedBy == nil {
		return rpc.Outcome{}, rpc.Conflictf("bot %s is not claimed", a.BotID)
	}

	bot.ClaimedBy = nil
	if err := h.saveBot(ctx, bot); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s is no longer claimed", a.BotID)), nil
}

func (h *txHandler) BotApprove(ctx context.Context, a rpc.BotApprove) (rpc.Outcome, error) {
	if _, err := h.setType(ctx, a.BotID, enums.BotTypeApproved, true, enums.BotTypePending); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s approved: %s", a.BotID, a.Reason)), nil
}

func (h *txHandler) BotDeny(ctx context.Context, a rpc.BotDeny) (rpc.Outcome, error) {
	if _, err := h.setType(ctx, a.BotID, enums.BotTypeDenied, true, enums.BotTypePending); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s denied: %s", a.BotID, a.Reason)), nil
}

func (h *txHandler) BotVoteReset(ctx context.Context, a rpc.BotVoteReset) (rpc.Outcome, error) {
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}
	removed, err := h.tx.DeleteVotes(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, rpc.Persistence("delete votes", err)
	}

	bot.Votes = 0
	if err := h.saveBot(ctx, bot); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Votes of bot %s reset, %d vote records removed", a.BotID, removed)), nil
}

func (h *txHandler) BotVoteResetAll(ctx context.Context, _ rpc.BotVoteResetAll) (rpc.Outcome, error) {
	removed, err := h.tx.DeleteAllVotes(ctx)
	if err != nil {
		return rpc.Outcome{}, rpc.Persistence("delete all votes", err)
	}
	bots, err := h.tx.ResetAllVoteCounts(ctx)
	if err != nil {
		return rpc.Outcome{}, rpc.Persistence("reset vote counts", err)
	}

	h.allOwners = true
	return rpc.Content(fmt.Sprintf("Votes reset on %d bots, %d vote records removed", bots, removed)), nil
}

func (h *txHandler) BotUnverify(ctx context.Context, a rpc.BotUnverify) (rpc.Outcome, error) {
	if _, err := h.setType(ctx, a.BotID, enums.BotTypePending, true,
		enums.BotTypeApproved, enums.BotTypeDenied, enums.BotTypeCertified); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s is back in the pending queue", a.BotID)), nil
}

// BotPremiumAdd extends an active premium window and opens a new one
// otherwise.
func (h *txHandler) BotPremiumAdd(ctx context.Context, a rpc.BotPremiumAdd) (rpc.Outcome, error) {
	if a.Hours <= 0 {
		return rpc.Outcome{}, &rpc.FieldError{Field: "duration", Err: errNonPositiveTime}
	}
	if a.Hours > rpc.MaxPremiumHours {
		return rpc.Outcome{}, &rpc.FieldError{Field: "duration", Err: errPremiumTooLong}
	}
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}

	if expiry, ok := bot.PremiumExpiry(); ok && expiry.After(h.now) {
		if bot.PremiumPeriodLengthHours > rpc.MaxPremiumHours-a.Hours {
			return rpc.Outcome{}, &rpc.FieldError{Field: "duration", Err: errPremiumTooLong}
		}
		bot.PremiumPeriodLengthHours += a.Hours
	} else {
		start := h.now
		bot.StartPremiumPeriod = &start
		bot.PremiumPeriodLengthHours = a.Hours
	}
	bot.Premium = true

	if err := h.saveBot(ctx, bot); err != nil {
		return rpc.Outcome{}, err
	}
	expiry, _ := bot.PremiumExpiry()
	return rpc.Content(fmt.Sprintf("Bot %s is premium until %s", a.BotID, expiry.UTC().Format("2006-01-02 15:04 UTC"))), nil
}

func (h *txHandler) BotPremiumRemove(ctx context.Context, a rpc.BotPremiumRemove) (rpc.Outcome, error) {
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}
	if !bot.Premium {
		return rpc.Outcome{}, rpc.Conflictf("bot %s is not premium", a.BotID)
	}

	bot.Premium = false
	bot.StartPremiumPeriod = nil
	bot.PremiumPeriodLengthHours = 0
	if err := h.saveBot(ctx, bot); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s is no longer premium", a.BotID)), nil
}

func (h *txHandler) setVoteBan(ctx context.Context, botID string, banned bool) error {
	bot, err := h.loadBot(ctx, botID)
	if err != nil {
		return err
	}
	bot.VoteBanned = banned
	return h.saveBot(ctx, bot)
}

func (h *txHandler) BotVoteBanAdd(ctx context.Context, a rpc.BotVoteBanAdd) (rpc.Outcome, error) {
	if err := h.setVoteBan(ctx, a.BotID, true); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.NoContent(), nil
}

func (h *txHandler) BotVoteBanRemove(ctx context.Context, a rpc.BotVoteBanRemove) (rpc.Outcome, error) {
	if err := h.setVoteBan(ctx, a.BotID, false); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.NoContent(), nil
}

func (h *txHandler) BotForceRemove(ctx context.Context, a rpc.BotForceRemove) (rpc.Outcome, error) {
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}
	removed, err := h.tx.DeleteVotes(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, rpc.Persistence("delete votes", err)
	}
	if err := h.tx.DeleteBot(ctx, a.BotID); err != nil {
		if errors.Is(err, postgres.ErrBotNotFound) {
			return rpc.Outcome{}, rpc.NotFoundf("bot %s not found", a.BotID)
		}
		return rpc.Outcome{}, rpc.Persistence("delete bot", err)
	}

	h.touchOwner(bot.Owner)
	if a.Kick {
		h.kick = parseBotUserID(a.BotID)
	}
	return rpc.Content(fmt.Sprintf("Bot %s removed with %d vote records", a.BotID, removed)), nil
}

func (h *txHandler) BotCertifyAdd(ctx context.Context, a rpc.BotCertifyAdd) (rpc.Outcome, error) {
	if _, err := h.setType(ctx, a.BotID, enums.BotTypeCertified, false, enums.BotTypeApproved); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s certified", a.BotID)), nil
}

func (h *txHandler) BotCertifyRemove(ctx context.Context, a rpc.BotCertifyRemove) (rpc.Outcome, error) {
	if _, err := h.setType(ctx, a.BotID, enums.BotTypeApproved, false, enums.BotTypeCertified); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s is no longer certified", a.BotID)), nil
}

func (h *txHandler) BotVoteCountSet(ctx context.Context, a rpc.BotVoteCountSet) (rpc.Outcome, error) {
	if a.Count < 0 {
		return rpc.Outcome{}, &rpc.FieldError{Field: "count", Err: errNegativeCount}
	}
	if a.Count > math.MaxInt32 {
		return rpc.Outcome{}, &rpc.FieldError{Field: "count", Err: errCountTooLarge}
	}
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}

	bot.Votes = a.Count
	if err := h.saveBot(ctx, bot); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Vote count of bot %s set to %d", a.BotID, a.Count)), nil
}

// resetCredentials drops everything the previous owner could use to act as
// the bot.
func (h *txHandler) resetCredentials(bot *model.Bot) {
	bot.APIToken = h.newToken()
	bot.Webhook = nil
	bot.WebhookSecret = nil
}

func (h *txHandler) BotTransferOwnershipUser(ctx context.Context, a rpc.BotTransferOwnershipUser) (rpc.Outcome, error) {
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}
	exists, err := h.tx.UserExists(ctx, a.NewOwner)
	if err != nil {
		return rpc.Outcome{}, rpc.Persistence("check new owner", err)
	}
	if !exists {
		return rpc.Outcome{}, rpc.NotFoundf("user %s not found", a.NewOwner)
	}

	h.touchOwner(bot.Owner)
	owner := a.NewOwner
	bot.Owner = &owner
	bot.TeamOwner = nil
	h.resetCredentials(&bot)
	if err := h.saveBot(ctx, bot); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s now belongs to user %s, its API token was regenerated and its webhook cleared", a.BotID, a.NewOwner)), nil
}

func (h *txHandler) BotTransferOwnershipTeam(ctx context.Context, a rpc.BotTransferOwnershipTeam) (rpc.Outcome, error) {
	bot, err := h.loadBot(ctx, a.BotID)
	if err != nil {
		return rpc.Outcome{}, err
	}
	team, err := h.loadTeam(ctx, a.NewTeam)
	if err != nil {
		return rpc.Outcome{}, err
	}

	h.touchOwner(bot.Owner)
	teamID := team.ID
	bot.TeamOwner = &teamID
	bot.Owner = nil
	h.resetCredentials(&bot)
	if err := h.saveBot(ctx, bot); err != nil {
		return rpc.Outcome{}, err
	}
	return rpc.Content(fmt.Sprintf("Bot %s now belongs to team %s (%s), its API token was regenerated and its webhook cleared", a.BotID, team.Name, team.ID)), nil
}

func (h *txHandler) TeamNameEdit(ctx context.Context, a rpc.TeamNameEdit) (rpc.Outcome, error) {
	if n := utf8.RuneCountInString(a.NewName); n < minTeamNameLen || n > maxTeamNameLen {
		return rpc.Outcome{}, &rpc.FieldError{Field: "new_name", Err: errTeamNameLength}
	}
	team, err := h.loadTeam(ctx, a.TeamID)
	if err != nil {
		return rpc.Outcome{}, err
	}

	if err := h.tx.UpdateTeamName(ctx, team.ID, a.NewName); err != nil {
		if errors.Is(err, postgres.ErrTeamNotFound) {
			return rpc.Outcome{}, rpc.NotFoundf("team %s not found", a.TeamID)
		}
		return rpc.Outcome{}, rpc.Persistence("rename team", err)
	}
	return rpc.Content(fmt.Sprintf("Team %s renamed from %q to %q", team.ID, team.Name, a.NewName)), nil
}
