// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/danielhkuo/content-vote/metrics"
	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
)

// Aggregator turns grouped vote counts into per-option results.
type Aggregator struct {
	polls   store.Polls
	votes   store.Votes
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewAggregator(s store.Store, m *metrics.Metrics, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{polls: s, votes: s, metrics: m, logger: logger}
}

// Results returns the live tally for a poll. Every option of the poll appears
// in Counts; Percentages is empty when nobody has voted.
func (a *Aggregator) Results(ctx context.Context, pollID string) (models.ResultsSummary, error) {
	summary, err := a.results(ctx, pollID)
	a.metrics.ObserveResults(err)
	if err != nil {
		if _, ok := ReasonOf(err); !ok {
			a.logger.Error("results read failed",
				"event", "results_store_failed",
				"poll_id", pollID,
				"error", err.Error(),
			)
		}
		return models.ResultsSummary{}, err
	}
	return summary, nil
}

func (a *Aggregator) results(ctx context.Context, pollID string) (models.ResultsSummary, error) {
	poll, found, err := a.polls.FindPollByID(ctx, pollID)
	if err != nil {
		return models.ResultsSummary{}, storeError("find poll", err)
	}
	if !found {
		return models.ResultsSummary{}, reject(models.ReasonPollNotFound)
	}

	options, err := a.polls.FindOptionsByPollID(ctx, poll.ID)
	if err != nil {
		return models.ResultsSummary{}, storeError("find options", err)
	}
	grouped, err := a.votes.CountByPollGroupedByOption(ctx, poll.ID)
	if err != nil {
		return models.ResultsSummary{}, storeError("count votes", err)
	}

	return Summarize(poll, options, grouped), nil
}

// Summarize builds a ResultsSummary from a poll, its options and grouped
// counts. Counts for ids outside options are kept and listed after them.
func Summarize(poll models.Poll, options []models.Option, grouped map[string]int) models.ResultsSummary {
	counts := make(map[string]int, len(options))
	order := make([]string, 0, len(options))
	labels := make(map[string]string, len(options))
	for _, opt := range options {
		counts[opt.ID] = 0
		order = append(order, opt.ID)
		labels[opt.ID] = opt.LabelKey
	}

	var extra []string
	total := 0
	for id, n := range grouped {
		if _, known := counts[id]; !known {
			extra = append(extra, id)
		}
		counts[id] = n
		total += n
	}
	sort.Strings(extra)
	order = append(order, extra...)

	percentages := make(map[string]float64)
	if total > 0 {
		for id, n := range counts {
			percentages[id] = Percent(n, total)
		}
	}

	rows := make([]models.OptionResult, 0, len(order))
	for _, id := range order {
		rows = append(rows, models.OptionResult{
			OptionID: id,
			LabelKey: labels[id],
			Count:    counts[id],
			Percent:  percentages[id],
		})
	}

	return models.ResultsSummary{
		Poll:        models.SummaryOf(poll),
		Counts:      counts,
		Total:       total,
		Percentages: percentages,
		Options:     rows,
	}
}

// Percent returns count/total as a percentage rounded to two decimals.
func Percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*10000/float64(total)) / 100
}
