package rank

import "fmt"

// Recommendation types and priorities.
const (
	RecStatus      = "status"
	RecCritical    = "critical"
	RecImprovement = "improvement"
	RecOpportunity = "opportunity"
	RecTip         = "tip"
	RecInfo        = "info"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// recommendInput is everything the rule list reads.
type recommendInput struct {
	alreadyRanking bool
	currentRank    int
	myLevel        int
	levelFloor     int
	related        int
	dims           map[string]DimensionResult
}

// recommend walks the ordered rule list. Rules are independent: several
// can fire for one analysis. When none fire, a generic keep-going message
// is emitted so the caller always has something to show.
func recommend(in recommendInput) []Recommendation {
	var recs []Recommendation

	if in.alreadyRanking {
		recs = append(recs, Recommendation{
			Type:     RecStatus,
			Priority: PriorityLow,
			Message:  fmt.Sprintf("Already ranking at position %d. Keep the post updated to defend the spot.", in.currentRank),
		})
	}

	if in.myLevel < in.levelFloor {
		recs = append(recs, Recommendation{
			Type:     RecCritical,
			Priority: PriorityCritical,
			Message: fmt.Sprintf("This keyword is dominated by level %d+ blogs and yours is level %d. Raise the blog's overall level before targeting it.",
				in.levelFloor, in.myLevel),
		})
	}

	switch {
	case in.related == 0:
		recs = append(recs, Recommendation{
			Type:     RecCritical,
			Priority: PriorityCritical,
			Message:  "No posts related to this keyword were found. Write at least 5 related posts to establish topical authority.",
		})
	case in.related < 3:
		recs = append(recs, Recommendation{
			Type:     RecImprovement,
			Priority: PriorityHigh,
			Message: fmt.Sprintf("Only %d related post(s). Publish %d more to reach the minimum topical footprint of 3.",
				in.related, 3-in.related),
		})
	}

	if d, ok := in.dims["content_quality"]; ok && d.Score < 40 {
		recs = append(recs, Recommendation{
			Type:     RecImprovement,
			Priority: PriorityMedium,
			Message:  "Post length is below the competitive bar. Aim for 500+ characters of substantive content per post.",
		})
	}

	if d, ok := in.dims["content_freshness"]; ok && d.Score >= 65 {
		recs = append(recs, Recommendation{
			Type:     RecOpportunity,
			Priority: PriorityMedium,
			Message:  "Competing posts are getting stale. A fresh, thorough post on this keyword has a real opening.",
		})
	}

	if d, ok := in.dims["posting_consistency"]; ok && d.Score < 30 {
		recs = append(recs, Recommendation{
			Type:     RecImprovement,
			Priority: PriorityMedium,
			Message:  "Posting cadence is too low. Publish 2-3 posts per week to rebuild activity signals.",
		})
	}

	if d, ok := in.dims["keyword_optimization"]; ok && d.Score >= 55 {
		recs = append(recs, Recommendation{
			Type:     RecTip,
			Priority: PriorityLow,
			Message:  "Use the exact keyword in the post title and the first paragraph.",
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Type:     RecInfo,
			Priority: PriorityLow,
			Message:  "Position looks competitive. Keep producing related content to hold it.",
		})
	}
	return recs
}
