// Package executortest provides an in-memory executor.Store for tests.
package executortest

import (
	"context"
	"errors"
	"sync"

	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/repo/postgres"
	"github.com/ivankudzin/botlist/internal/services/executor"
)

var ErrInjected = errors.New("injected failure")

// State is a full copy of the store contents. Votes holds the number of vote
// records per bot.
type State struct {
	Bots  map[string]model.Bot
	Votes map[string]int
	Teams map[string]model.Team
	Users map[string]bool
	Logs  []model.RPCLog
}

func (s State) clone() State {
	out := State{
		Bots:  make(map[string]model.Bot, len(s.Bots)),
		Votes: make(map[string]int, len(s.Votes)),
		Teams: make(map[string]model.Team, len(s.Teams)),
		Users: make(map[string]bool, len(s.Users)),
		Logs:  append([]model.RPCLog(nil), s.Logs...),
	}
	for k, v := range s.Bots {
		out.Bots[k] = v
	}
	for k, v := range s.Votes {
		out.Votes[k] = v
	}
	for k, v := range s.Teams {
		out.Teams[k] = v
	}
	for k, v := range s.Users {
		out.Users[k] = v
	}
	return out
}

// MemStore applies each transaction to a copy of its state and swaps the copy
// in only when the transaction function succeeds.
type MemStore struct {
	mu     sync.Mutex
	state  State
	failOn map[string]error
	txs    int
}

var _ executor.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		state: State{
			Bots:  map[string]model.Bot{},
			Votes: map[string]int{},
			Teams: map[string]model.Team{},
			Users: map[string]bool{},
		},
		failOn: map[string]error{},
	}
}

func (s *MemStore) PutBot(bot model.Bot, votes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Bots[bot.BotID] = bot
	s.state.Votes[bot.BotID] = votes
}

func (s *MemStore) PutTeam(team model.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Teams[team.ID] = team
}

func (s *MemStore) PutUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Users[userID] = true
}

// FailOn makes the named Tx method return err from now on.
func (s *MemStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[op] = err
}

func (s *MemStore) Bot(id string) (model.Bot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bot, ok := s.state.Bots[id]
	return bot, ok
}

func (s *MemStore) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Transactions counts WithTx calls, committed or not.
func (s *MemStore) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs
}

func (s *MemStore) WithTx(ctx context.Context, fn func(context.Context, executor.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs++

	work := s.state.clone()
	if err := fn(ctx, &memTx{state: &work, failOn: s.failOn}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type memTx struct {
	state  *State
	failOn map[string]error
}

func (t *memTx) GetBotForUpdate(_ context.Context, botID string) (model.Bot, error) {
	if err := t.failOn["GetBotForUpdate"]; err != nil {
		return model.Bot{}, err
	}
	bot, ok := t.state.Bots[botID]
	if !ok {
		return model.Bot{}, postgres.ErrBotNotFound
	}
	return bot, nil
}

func (t *memTx) UpdateBot(_ context.Context, bot model.Bot) error {
	if err := t.failOn["UpdateBot"]; err != nil {
		return err
	}
	if _, ok := t.state.Bots[bot.BotID]; !ok {
		return postgres.ErrBotNotFound
	}
	t.state.Bots[bot.BotID] = bot
	return nil
}

func (t *memTx) DeleteBot(_ context.Context, botID string) error {
	if err := t.failOn["DeleteBot"]; err != nil {
		return err
	}
	if _, ok := t.state.Bots[botID]; !ok {
		return postgres.ErrBotNotFound
	}
	delete(t.state.Bots, botID)
	return nil
}

func (t *memTx) DeleteVotes(_ context.Context, botID string) (int64, error) {
	if err := t.failOn["DeleteVotes"]; err != nil {
		return 0, err
	}
	n := t.state.Votes[botID]
	delete(t.state.Votes, botID)
	return int64(n), nil
}

func (t *memTx) DeleteAllVotes(_ context.Context) (int64, error) {
	if err := t.failOn["DeleteAllVotes"]; err != nil {
		return 0, err
	}
	var n int
	for _, count := range t.state.Votes {
		n += count
	}
	t.state.Votes = map[string]int{}
	return int64(n), nil
}

func (t *memTx) ResetAllVoteCounts(_ context.Context) (int64, error) {
	if err := t.failOn["ResetAllVoteCounts"]; err != nil {
		return 0, err
	}
	for id, bot := range t.state.Bots {
		bot.Votes = 0
		t.state.Bots[id] = bot
	}
	return int64(len(t.state.Bots)), nil
}

func (t *memTx) GetTeamForUpdate(_ context.Context, teamID string) (model.Team, error) {
	if err := t.failOn["GetTeamForUpdate"]; err != nil {
		return model.Team{}, err
	}
	team, ok := t.state.Teams[teamID]
	if !ok {
		return model.Team{}, postgres.ErrTeamNotFound
	}
	return team, nil
}

func (t *memTx) UpdateTeamName(_ context.Context, teamID, name string) error {
	if err := t.failOn["UpdateTeamName"]; err != nil {
		return err
	}
	team, ok := t.state.Teams[teamID]
	if !ok {
		return postgres.ErrTeamNotFound
	}
	team.Name = name
	t.state.Teams[teamID] = team
	return nil
}

func (t *memTx) UserExists(_ context.Context, userID string) (bool, error) {
	if err := t.failOn["UserExists"]; err != nil {
		return false, err
	}
	return t.state.Users[userID], nil
}

func (t *memTx) InsertRPCLog(_ context.Context, entry model.RPCLog) error {
	if err := t.failOn["InsertRPCLog"]; err != nil {
		return err
	}
	t.state.Logs = append(t.state.Logs, entry)
	return nil
}
