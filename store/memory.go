// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/content-vote/models"
)

// Memory is an in-process Store. The (user, poll) key map plays the role of
// the unique constraint.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]models.User
	polls    map[string]models.Poll
	options  map[string][]models.Option
	votes    map[string]models.Vote
	byIdent  map[voteKey]string
	attempts []models.VoteAttempt
}

type voteKey struct {
	userID string
	pollID string
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]models.User),
		polls:   make(map[string]models.Poll),
		options: make(map[string][]models.Option),
		votes:   make(map[string]models.Vote),
		byIdent: make(map[voteKey]string),
	}
}

func (m *Memory) AddUser(_ context.Context, user models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RolePlayer
	}
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *Memory) AddPoll(_ context.Context, poll models.Poll, options []models.Option) (string, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if poll.ID == "" {
		poll.ID = uuid.NewString()
	}
	if poll.Status == "" {
		poll.Status = models.StatusDraft
	}
	if !models.ValidStatus(poll.Status) {
		return "", nil, fmt.Errorf("invalid poll status %q", poll.Status)
	}
	if poll.CreatedAt.IsZero() {
		poll.CreatedAt = time.Now()
	}
	m.polls[poll.ID] = poll

	ids := make([]string, 0, len(options))
	stored := make([]models.Option, 0, len(options))
	for i, opt := range options {
		if opt.ID == "" {
			opt.ID = uuid.NewString()
		}
		opt.PollID = poll.ID
		opt.Position = positionOf(opt, i)
		stored = append(stored, opt)
		ids = append(ids, opt.ID)
	}
	m.options[poll.ID] = stored
	return poll.ID, ids, nil
}

// SetBanned flips a user's banned flag.
func (m *Memory) SetBanned(userID string, banned bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Banned = banned
		m.users[userID] = u
	}
}

func (m *Memory) FindUserByID(ctx context.Context, id string) (models.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *Memory) FindPollByID(ctx context.Context, id string) (models.Poll, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Poll{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.polls[id]
	return p, ok, nil
}

func (m *Memory) FindOptionsByPollID(ctx context.Context, pollID string) ([]models.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.Option{}, m.options[pollID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *Memory) FindActivePollsByContent(ctx context.Context, contentType, contentKey string, now time.Time) ([]models.Poll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	polls := []models.Poll{}
	for _, p := range m.polls {
		if p.ContentType == contentType && p.ContentKey == contentKey && p.IsActiveAt(now) {
			polls = append(polls, p)
		}
	}
	sort.Slice(polls, func(i, j int) bool {
		if polls[i].CreatedAt.Equal(polls[j].CreatedAt) {
			return polls[i].ID < polls[j].ID
		}
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
	return polls, nil
}

func (m *Memory) UpdatePollStatus(ctx context.Context, pollID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !models.ValidStatus(status) {
		return fmt.Errorf("invalid poll status %q", status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.polls[pollID]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	m.polls[pollID] = p
	return nil
}

func (m *Memory) FindVoteByUserAndPoll(ctx context.Context, userID, pollID string) (models.Vote, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Vote{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byIdent[voteKey{userID: userID, pollID: pollID}]
	if !ok {
		return models.Vote{}, false, nil
	}
	return m.votes[id], true, nil
}

func (m *Memory) InsertVote(ctx context.Context, vote models.Vote) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := voteKey{userID: vote.UserID, pollID: vote.PollID}
	if _, exists := m.byIdent[key]; exists {
		return "", ErrDuplicateVote
	}
	vote.ID = uuid.NewString()
	vote.UpdatedAt = vote.CreatedAt
	m.votes[vote.ID] = vote
	m.byIdent[key] = vote.ID
	return vote.ID, nil
}

func (m *Memory) UpdateVoteOption(ctx context.Context, voteID, optionID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[voteID]
	if !ok {
		return ErrNotFound
	}
	v.OptionID = optionID
	v.UpdatedAt = at
	m.votes[voteID] = v
	return nil
}

func (m *Memory) CountByPollGroupedByOption(ctx context.Context, pollID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, v := range m.votes {
		if v.PollID == pollID {
			counts[v.OptionID]++
		}
	}
	return counts, nil
}

func (m *Memory) CountRecentVotesByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, v := range m.votes {
		if v.UserID == userID && !v.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// CountVotesByPoll counts raw vote rows for a poll.
func (m *Memory) CountVotesByPoll(_ context.Context, pollID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, v := range m.votes {
		if v.PollID == pollID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) LogVoteAttempt(ctx context.Context, attempt models.VoteAttempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, attempt)
	return nil
}

// Attempts returns a copy of the recorded vote attempts.
func (m *Memory) Attempts() []models.VoteAttempt {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.VoteAttempt{}, m.attempts...)
}

var _ Store = (*Memory)(nil)
