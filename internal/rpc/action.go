package rpc

import "context"

// Method is the stable, user-facing name of an administrative action.
type Method string

const (
	MethodBotClaim                 Method = "BotClaim"
	MethodBotUnclaim               Method = "BotUnclaim"
	MethodBotApprove               Method = "BotApprove"
	MethodBotDeny                  Method = "BotDeny"
	MethodBotVoteReset             Method = "BotVoteReset"
	MethodBotVoteResetAll          Method = "BotVoteResetAll"
	MethodBotUnverify              Method = "BotUnverify"
	MethodBotPremiumAdd            Method = "BotPremiumAdd"
	MethodBotPremiumRemove         Method = "BotPremiumRemove"
	MethodBotVoteBanAdd            Method = "BotVoteBanAdd"
	MethodBotVoteBanRemove         Method = "BotVoteBanRemove"
	MethodBotForceRemove           Method = "BotForceRemove"
	MethodBotCertifyAdd            Method = "BotCertifyAdd"
	MethodBotCertifyRemove         Method = "BotCertifyRemove"
	MethodBotVoteCountSet          Method = "BotVoteCountSet"
	MethodBotTransferOwnershipUser Method = "BotTransferOwnershipUser"
	MethodBotTransferOwnershipTeam Method = "BotTransferOwnershipTeam"
	MethodTeamNameEdit             Method = "TeamNameEdit"
)

func (m Method) String() string {
	return string(m)
}

// Action is one fully populated administrative intent.
type Action interface {
	Method() Method
	Dispatch(ctx context.Context, h Handler) (Outcome, error)
}

// Handler executes every action variant. Adding a variant to the catalog
// without a Handler method breaks the build of every implementation.
type Handler interface {
	BotClaim(context.Context, BotClaim) (Outcome, error)
	BotUnclaim(context.Context, BotUnclaim) (Outcome, error)
	BotApprove(context.Context, BotApprove) (Outcome, error)
	BotDeny(context.Context, BotDeny) (Outcome, error)
	BotVoteReset(context.Context, BotVoteReset) (Outcome, error)
	BotVoteResetAll(context.Context, BotVoteResetAll) (Outcome, error)
	BotUnverify(context.Context, BotUnverify) (Outcome, error)
	BotPremiumAdd(context.Context, BotPremiumAdd) (Outcome, error)
	BotPremiumRemove(context.Context, BotPremiumRemove) (Outcome, error)
	BotVoteBanAdd(context.Context, BotVoteBanAdd) (Outcome, error)
	BotVoteBanRemove(context.Context, BotVoteBanRemove) (Outcome, error)
	BotForceRemove(context.Context, BotForceRemove) (Outcome, error)
	BotCertifyAdd(context.Context, BotCertifyAdd) (Outcome, error)
	BotCertifyRemove(context.Context, BotCertifyRemove) (Outcome, error)
	BotVoteCountSet(context.Context, BotVoteCountSet) (Outcome, error)
	BotTransferOwnershipUser(context.Context, BotTransferOwnershipUser) (Outcome, error)
	BotTransferOwnershipTeam(context.Context, BotTransferOwnershipTeam) (Outcome, error)
	TeamNameEdit(context.Context, TeamNameEdit) (Outcome, error)
}

type BotClaim struct {
	BotID string `json:"bot_id"`
	Force bool   `json:"force"`
}

type BotUnclaim struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotApprove struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotDeny struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotVoteReset struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotVoteResetAll struct {
	Reason string `json:"reason"`
}

type BotUnverify struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

// BotPremiumAdd carries the premium window length in whole hours.
type BotPremiumAdd struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
	Hours  int    `json:"duration_hours"`
}

type BotPremiumRemove struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotVoteBanAdd struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotVoteBanRemove struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotForceRemove struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
	Kick   bool   `json:"kick"`
}

type BotCertifyAdd struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotCertifyRemove struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
}

type BotVoteCountSet struct {
	BotID  string `json:"bot_id"`
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type BotTransferOwnershipUser struct {
	BotID    string `json:"bot_id"`
	Reason   string `json:"reason"`
	NewOwner string `json:"new_owner"`
}

type BotTransferOwnershipTeam struct {
	BotID   string `json:"bot_id"`
	Reason  string `json:"reason"`
	NewTeam string `json:"new_team"`
}

type TeamNameEdit struct {
	TeamID  string `json:"team_id"`
	NewName string `json:"new_name"`
	Reason  string `json:"reason"`
}

func (BotClaim) Method() Method                 { return MethodBotClaim }
func (BotUnclaim) Method() Method               { return MethodBotUnclaim }
func (BotApprove) Method() Method               { return MethodBotApprove }
func (BotDeny) Method() Method                  { return MethodBotDeny }
func (BotVoteReset) Method() Method             { return MethodBotVoteReset }
func (BotVoteResetAll) Method() Method          { return MethodBotVoteResetAll }
func (BotUnverify) Method() Method              { return MethodBotUnverify }
func (BotPremiumAdd) Method() Method            { return MethodBotPremiumAdd }
func (BotPremiumRemove) Method() Method         { return MethodBotPremiumRemove }
func (BotVoteBanAdd) Method() Method            { return MethodBotVoteBanAdd }
func (BotVoteBanRemove) Method() Method         { return MethodBotVoteBanRemove }
func (BotForceRemove) Method() Method           { return MethodBotForceRemove }
func (BotCertifyAdd) Method() Method            { return MethodBotCertifyAdd }
func (BotCertifyRemove) Method() Method         { return MethodBotCertifyRemove }
func (BotVoteCountSet) Method() Method          { return MethodBotVoteCountSet }
func (BotTransferOwnershipUser) Method() Method { return MethodBotTransferOwnershipUser }
func (BotTransferOwnershipTeam) Method() Method { return MethodBotTransferOwnershipTeam }
func (TeamNameEdit) Method() Method             { return MethodTeamNameEdit }

func (a BotClaim) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotClaim(ctx, a)
}

func (a BotUnclaim) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotUnclaim(ctx, a)
}

func (a BotApprove) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotApprove(ctx, a)
}

func (a BotDeny) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotDeny(ctx, a)
}

func (a BotVoteReset) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotVoteReset(ctx, a)
}

func (a BotVoteResetAll) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotVoteResetAll(ctx, a)
}

func (a BotUnverify) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotUnverify(ctx, a)
}

func (a BotPremiumAdd) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotPremiumAdd(ctx, a)
}

func (a BotPremiumRemove) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotPremiumRemove(ctx, a)
}

func (a BotVoteBanAdd) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotVoteBanAdd(ctx, a)
}

func (a BotVoteBanRemove) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotVoteBanRemove(ctx, a)
}

func (a BotForceRemove) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotForceRemove(ctx, a)
}

func (a BotCertifyAdd) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotCertifyAdd(ctx, a)
}

func (a BotCertifyRemove) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotCertifyRemove(ctx, a)
}

func (a BotVoteCountSet) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotVoteCountSet(ctx, a)
}

func (a BotTransferOwnershipUser) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotTransferOwnershipUser(ctx, a)
}

func (a BotTransferOwnershipTeam) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.BotTransferOwnershipTeam(ctx, a)
}

func (a TeamNameEdit) Dispatch(ctx context.Context, h Handler) (Outcome, error) {
	return h.TeamNameEdit(ctx, a)
}
