package feature

import (
	"strings"
	"time"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

func extractContext(qctx QueryContext, entry *indexstore.Entry) ContextFeatures {
	now := qctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	hour := now.Hour()
	weekday := now.Weekday()

	return ContextFeatures{
		IssueRelevance:     issueRelevance(qctx, entry),
		TaskPhaseRelevance: taskPhaseRelevance(qctx.TaskPhase, entry),
		UrgencyMatch:       urgencyMatch(qctx.Urgent, entry),
		IsWorkingHours:     hour >= 9 && hour < 18 && weekday != time.Saturday && weekday != time.Sunday,
		IsWeekend:          weekday == time.Saturday || weekday == time.Sunday,
		TimeOfDay:          float64(hour) / 24.0,
		QueryPosition:      qctx.QueryPosition,
		SessionLength:      qctx.SessionLength,
		QueryComplexity:    queryComplexity(qctx),
		ActiveProject:      qctx.ActiveProject,
		RepositoryActive:   qctx.RepositoryActive,
		BranchContext:      qctx.BranchContext,
	}
}

func issueRelevance(qctx QueryContext, entry *indexstore.Entry) float64 {
	if qctx.IssueTitle == "" && len(qctx.IssueLabels) == 0 {
		return 0
	}
	titleWords := tokenize(strings.ToLower(qctx.IssueTitle))
	score := wordOverlapRatio(titleWords, strings.ToLower(entry.Title+" "+entry.Content))
	if len(qctx.IssueLabels) > 0 {
		score = (score + domainFit(qctx, entry)) / 2
	}
	return score
}

func taskPhaseRelevance(phase string, entry *indexstore.Entry) float64 {
	if phase == "" {
		return 0
	}
	lp := strings.ToLower(phase)
	for _, t := range entry.Tags {
		if strings.Contains(strings.ToLower(t), lp) {
			return 1.0
		}
	}
	if strings.Contains(strings.ToLower(entry.Category), lp) {
		return 1.0
	}
	return 0
}

func urgencyMatch(queryUrgent bool, entry *indexstore.Entry) bool {
	if !queryUrgent {
		return false
	}
	sev := strings.ToLower(entry.Severity)
	return sev == "critical" || sev == "urgent"
}

func queryComplexity(qctx QueryContext) float64 {
	n := float64(len(qctx.IssueLabels)) + float64(len(qctx.AgentTypes))
	if qctx.TaskPhase != "" {
		n++
	}
	if n <= 0 {
		return 0
	}
	c := n / 10.0
	if c > 1 {
		return 1
	}
	return c
}
