package titan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// ReportKind classifies a feedback report.
type ReportKind string

const (
	ReportBug         ReportKind = "bug"
	ReportImprovement ReportKind = "improvement"
	ReportProblem     ReportKind = "problem"
	ReportAnswer      ReportKind = "answer"
	ReportGeneral     ReportKind = "general"
)

// ReportKinds lists the valid report kinds in display order.
var ReportKinds = []ReportKind{ReportBug, ReportImprovement, ReportProblem, ReportAnswer, ReportGeneral}

// Length limits for reports, counted in user-perceived characters.
const (
	MinReportTitle       = 5
	MinReportDescription = 10
	MaxReportDescription = 1000
)

// Report is a feedback report about the application.
type Report struct {
	Kind             ReportKind
	Title            string
	Description      string
	Steps            string
	ReasoningEnabled bool
	Timestamp        time.Time
}

// Validate checks the report before submission.
func (r Report) Validate() error {
	if !r.Kind.valid() {
		return fmt.Errorf("unknown report kind %q: %w", r.Kind, ErrValidation)
	}
	if n := graphemes(r.Title); n < MinReportTitle {
		return fmt.Errorf("title must have at least %d characters: %w", MinReportTitle, ErrValidation)
	}
	n := graphemes(r.Description)
	if n < MinReportDescription {
		return fmt.Errorf("description must have at least %d characters: %w", MinReportDescription, ErrValidation)
	}
	if n > MaxReportDescription {
		return fmt.Errorf("description has %d characters, maximum is %d: %w", n, MaxReportDescription, ErrValidation)
	}
	return nil
}

func (k ReportKind) valid() bool {
	for _, v := range ReportKinds {
		if k == v {
			return true
		}
	}
	return false
}

func graphemes(s string) int {
	return uniseg.GraphemeClusterCount(strings.TrimSpace(s))
}

// Rating is a thumbs-up or thumbs-down on an answer.
type Rating string

const (
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
)

// Vote rates one answer.
type Vote struct {
	Rating    Rating
	Content   string
	SessionID string
	Timestamp time.Time
}

// ReportSubmitter sends feedback reports.
type ReportSubmitter interface {
	SubmitReport(ctx context.Context, r Report) error
}

// VoteSubmitter sends answer ratings.
type VoteSubmitter interface {
	SubmitVote(ctx context.Context, v Vote) error
}
