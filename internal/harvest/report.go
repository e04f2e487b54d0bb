package harvest

import "time"

// Outcome says why a fetch produced what it produced.
type Outcome int

const (
	// OutcomeOK means the archive returned data.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the archive answered but had nothing.
	OutcomeEmpty
	// OutcomeFailed means the call failed; the result is empty.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the value of one fetch together with how it went. Failed results
// carry the zero value and the error.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// Counts tallies what happened while traversing one or more units.
type Counts struct {
	Requests       int `json:"requests"`
	Failures       int `json:"failures"`
	EmptyResponses int `json:"empty_responses"`
	SkippedPages   int `json:"skipped_pages"`
	SkippedStories int `json:"skipped_stories"`
	EmptyDetails   int `json:"empty_details"`
	Articles       int `json:"articles"`
}

func (c *Counts) add(o Counts) {
	c.Requests += o.Requests
	c.Failures += o.Failures
	c.EmptyResponses += o.EmptyResponses
	c.SkippedPages += o.SkippedPages
	c.SkippedStories += o.SkippedStories
	c.EmptyDetails += o.EmptyDetails
	c.Articles += o.Articles
}

func (c *Counts) observe(o Outcome) {
	c.Requests++
	switch o {
	case OutcomeFailed:
		c.Failures++
	case OutcomeEmpty:
		c.EmptyResponses++
	}
}

// EditionReport covers one edition on one date.
type EditionReport struct {
	EditionID int    `json:"edition_id"`
	Date      string `json:"date"`
	Counts
}

// DayReport covers every edition of one date.
type DayReport struct {
	Date           string `json:"date"`
	Editions       int    `json:"editions"`
	FailedEditions int    `json:"failed_editions"`
	Counts
}

// Productive reports whether the day yielded any articles.
func (d DayReport) Productive() bool {
	return d.Articles > 0
}

// Report summarises a whole run.
type Report struct {
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Days           int       `json:"days"`
	ProductiveDays int       `json:"productive_days"`
	TotalArticles  int       `json:"total_articles"`
	Cancelled      bool      `json:"cancelled"`
	Counts
}

func (r *Report) addDay(d DayReport) {
	r.Days++
	if d.Productive() {
		r.ProductiveDays++
	}
	r.Counts.add(d.Counts)
}
