// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/content-vote/db"
	"github.com/danielhkuo/content-vote/models"
)

// SQLStore implements Store on PostgreSQL or SQLite.
type SQLStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewSQLStore(conn *sqlx.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: conn, logger: logger}
}

func (s *SQLStore) get(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *SQLStore) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.db.Rebind(query), args...)
}

func (s *SQLStore) FindUserByID(ctx context.Context, id string) (models.User, bool, error) {
	var user models.User
	err := s.get(ctx, &user, `
		SELECT id, username, password_hash, role, banned, created_at
		FROM app_user WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, s.logError("store_find_user_failed", err, "user_id", id)
	}
	return user, true, nil
}

func (s *SQLStore) FindPollByID(ctx context.Context, id string) (models.Poll, bool, error) {
	var poll models.Poll
	err := s.get(ctx, &poll, `
		SELECT id, content_type, content_key, title_key, description_key, status,
		       starts_at, ends_at, created_by, created_at
		FROM poll WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, false, nil
	}
	if err != nil {
		return models.Poll{}, false, s.logError("store_find_poll_failed", err, "poll_id", id)
	}
	return poll, true, nil
}

func (s *SQLStore) FindOptionsByPollID(ctx context.Context, pollID string) ([]models.Option, error) {
	options := []models.Option{}
	err := s.selectAll(ctx, &options, `
		SELECT id, poll_id, label_key, position, active
		FROM option
		WHERE poll_id = ?
		ORDER BY position, id
	`, pollID)
	if err != nil {
		return nil, s.logError("store_find_options_failed", err, "poll_id", pollID)
	}
	return options, nil
}

func (s *SQLStore) FindActivePollsByContent(ctx context.Context, contentType, contentKey string, now time.Time) ([]models.Poll, error) {
	var rows []models.Poll
	err := s.selectAll(ctx, &rows, `
		SELECT id, content_type, content_key, title_key, description_key, status,
		       starts_at, ends_at, created_by, created_at
		FROM poll
		WHERE content_type = ? AND content_key = ? AND status = ?
		ORDER BY created_at DESC, id
	`, contentType, contentKey, models.StatusActive)
	if err != nil {
		return nil, s.logError("store_find_active_polls_failed", err,
			"content_type", contentType,
			"content_key", contentKey,
		)
	}

	// The window check runs here so both dialects compare times the same way.
	polls := make([]models.Poll, 0, len(rows))
	for _, p := range rows {
		if p.IsActiveAt(now) {
			polls = append(polls, p)
		}
	}
	return polls, nil
}

func (s *SQLStore) UpdatePollStatus(ctx context.Context, pollID, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("invalid poll status %q", status)
	}
	res, err := s.exec(ctx, `UPDATE poll SET status = ? WHERE id = ?`, status, pollID)
	if err != nil {
		return s.logError("store_update_poll_status_failed", err, "poll_id", pollID, "status", status)
	}
	return requireRow(res)
}

func (s *SQLStore) FindVoteByUserAndPoll(ctx context.Context, userID, pollID string) (models.Vote, bool, error) {
	var vote models.Vote
	err := s.get(ctx, &vote, `
		SELECT id, poll_id, option_id, user_id, created_at, updated_at, ip_hash, user_agent, context_key
		FROM vote
		WHERE user_id = ? AND poll_id = ?
	`, userID, pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, false, nil
	}
	if err != nil {
		return models.Vote{}, false, s.logError("store_find_vote_failed", err,
			"user_id", userID,
			"poll_id", pollID,
		)
	}
	return vote, true, nil
}

func (s *SQLStore) InsertVote(ctx context.Context, vote models.Vote) (string, error) {
	id := uuid.NewString()
	at := vote.CreatedAt.UTC()
	_, err := s.exec(ctx, `
		INSERT INTO vote (id, poll_id, option_id, user_id, created_at, updated_at, ip_hash, user_agent, context_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, vote.PollID, vote.OptionID, vote.UserID, at, at, vote.IPHash, vote.UserAgent, vote.ContextKey)
	if err != nil {
		if isDuplicateVote(err) {
			return "", ErrDuplicateVote
		}
		return "", s.logError("store_insert_vote_failed", err,
			"user_id", vote.UserID,
			"poll_id", vote.PollID,
		)
	}
	return id, nil
}

func (s *SQLStore) UpdateVoteOption(ctx context.Context, voteID, optionID string, at time.Time) error {
	res, err := s.exec(ctx, `
		UPDATE vote SET option_id = ?, updated_at = ? WHERE id = ?
	`, optionID, at.UTC(), voteID)
	if err != nil {
		return s.logError("store_update_vote_failed", err, "vote_id", voteID)
	}
	return requireRow(res)
}

func (s *SQLStore) CountByPollGroupedByOption(ctx context.Context, pollID string) (map[string]int, error) {
	var rows []struct {
		OptionID string `db:"option_id"`
		Count    int    `db:"cnt"`
	}
	err := s.selectAll(ctx, &rows, `
		SELECT option_id, COUNT(*) AS cnt
		FROM vote
		WHERE poll_id = ?
		GROUP BY option_id
	`, pollID)
	if err != nil {
		return nil, s.logError("store_count_votes_failed", err, "poll_id", pollID)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.OptionID] = r.Count
	}
	return counts, nil
}

func (s *SQLStore) CountRecentVotesByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := s.get(ctx, &count, `
		SELECT COUNT(*) FROM vote WHERE user_id = ? AND updated_at >= ?
	`, userID, since.UTC())
	if err != nil {
		return 0, s.logError("store_count_recent_votes_failed", err, "user_id", userID)
	}
	return count, nil
}

// CountVotesByPoll counts raw vote rows for a poll.
func (s *SQLStore) CountVotesByPoll(ctx context.Context, pollID string) (int, error) {
	var count int
	if err := s.get(ctx, &count, `SELECT COUNT(*) FROM vote WHERE poll_id = ?`, pollID); err != nil {
		return 0, s.logError("store_count_poll_votes_failed", err, "poll_id", pollID)
	}
	return count, nil
}

func (s *SQLStore) LogVoteAttempt(ctx context.Context, attempt models.VoteAttempt) error {
	var reason *string
	if attempt.Reason != nil {
		r := attempt.Reason.String()
		reason = &r
	}
	_, err := s.exec(ctx, `
		INSERT INTO vote_log (id, poll_id, user_id, ip_hash, user_agent, vote_id, reason_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), attempt.PollID, attempt.UserID, attempt.IPHash, attempt.UserAgent,
		attempt.VoteID, reason, attempt.At.UTC())
	if err != nil {
		return s.logError("store_log_vote_attempt_failed", err,
			"poll_id", attempt.PollID,
			"user_id", attempt.UserID,
		)
	}
	return nil
}

// AddUser inserts a user, generating an id when none is set.
func (s *SQLStore) AddUser(ctx context.Context, user models.User) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RolePlayer
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := s.exec(ctx, `
		INSERT INTO app_user (id, username, password_hash, role, banned, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.PasswordHash, user.Role, user.Banned, user.CreatedAt.UTC())
	if err != nil {
		return "", s.logError("store_add_user_failed", err, "username", user.Username)
	}
	return user.ID, nil
}

// AddPoll inserts a poll and its options in one transaction and returns the
// poll id and option ids in input order.
func (s *SQLStore) AddPoll(ctx context.Context, poll models.Poll, options []models.Option) (string, []string, error) {
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

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", nil, s.logError("store_add_poll_begin_failed", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO poll (id, content_type, content_key, title_key, description_key, status,
		                  starts_at, ends_at, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), poll.ID, poll.ContentType, poll.ContentKey, poll.TitleKey, poll.DescriptionKey, poll.Status,
		utcPtr(poll.StartsAt), utcPtr(poll.EndsAt), poll.CreatedBy, poll.CreatedAt.UTC())
	if err != nil {
		return "", nil, s.logError("store_add_poll_failed", err, "poll_id", poll.ID)
	}

	ids := make([]string, 0, len(options))
	for i, opt := range options {
		if opt.ID == "" {
			opt.ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO option (id, poll_id, label_key, position, active)
			VALUES (?, ?, ?, ?, ?)
		`), opt.ID, poll.ID, opt.LabelKey, positionOf(opt, i), opt.Active)
		if err != nil {
			return "", nil, s.logError("store_add_option_failed", err, "poll_id", poll.ID)
		}
		ids = append(ids, opt.ID)
	}

	if err := tx.Commit(); err != nil {
		return "", nil, s.logError("store_add_poll_commit_failed", err, "poll_id", poll.ID)
	}
	return poll.ID, ids, nil
}

func (s *SQLStore) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+4)
	fields = append(fields, "event", event, "error", err.Error())
	fields = append(fields, attrs...)
	s.logger.Error("store operation failed", fields...)
	return fmt.Errorf("%s: %w", strings.TrimPrefix(event, "store_"), err)
}

// isDuplicateVote reports whether err is a uniqueness violation on the
// (user_id, poll_id) constraint, for either driver.
func isDuplicateVote(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == db.VoteUniqueConstraint
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
			strings.Contains(liteErr.Error(), "vote.user_id, vote.poll_id")
	}
	return false
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func positionOf(opt models.Option, index int) int {
	if opt.Position != 0 {
		return opt.Position
	}
	return index + 1
}

var _ Store = (*SQLStore)(nil)
