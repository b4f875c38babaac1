package jobs

import "errors"

var ErrNotFound = errors.New("job not found")

// Job is one posting in the listing. Salary and posted date are kept as the
// display strings the source feeds supply; the listing engine parses them
// on demand for sorting.
type Job struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Type            string   `json:"type"`
	WorkType        string   `json:"work_type"`
	Salary          string   `json:"salary"`
	Description     string   `json:"description"`
	Requirements    []string `json:"requirements,omitempty"`
	PostedDate      string   `json:"posted_date"`
	MatchPercentage int      `json:"match_percentage"`
	Liked           bool     `json:"liked"`
	Applied         bool     `json:"applied"`
	Level           string   `json:"level,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	Applicants      int      `json:"applicants"`
	Country         string   `json:"country,omitempty"`
}

// Filter selects which postings appear in the listing.
type Filter string

const (
	FilterMatched Filter = "matched"
	FilterLiked   Filter = "liked"
	FilterApplied Filter = "applied"
)

// SortKey selects the listing order.
type SortKey string

const (
	SortMatch      SortKey = "match"
	SortApplicants SortKey = "applicants"
	SortSalary     SortKey = "salary"
	SortDate       SortKey = "date"
)

// ParseFilter normalizes a query value, defaulting to matched.
func ParseFilter(v string) (Filter, bool) {
	switch Filter(v) {
	case FilterMatched, FilterLiked, FilterApplied:
		return Filter(v), true
	case "":
		return FilterMatched, true
	default:
		return FilterMatched, false
	}
}

// ParseSortKey normalizes a query value, defaulting to match.
func ParseSortKey(v string) (SortKey, bool) {
	switch SortKey(v) {
	case SortMatch, SortApplicants, SortSalary, SortDate:
		return SortKey(v), true
	case "":
		return SortMatch, true
	default:
		return SortMatch, false
	}
}
