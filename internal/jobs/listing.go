package jobs

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	salaryRe  = regexp.MustCompile(`\$?([\d,]+)([Kk])?`)
	daysAgoRe = regexp.MustCompile(`(\d+)\s+days?\s+ago`)
)

// Listing applies filter then sort and returns a new slice; the input is
// never mutated. Ties keep their prior relative order.
func Listing(in []Job, filter Filter, key SortKey, now time.Time) []Job {
	out := FilterJobs(in, filter)
	SortJobs(out, key, now)
	return out
}

// FilterJobs returns a fresh slice holding the postings the filter keeps.
// Matched passes everything through.
func FilterJobs(in []Job, filter Filter) []Job {
	out := make([]Job, 0, len(in))
	for _, j := range in {
		switch filter {
		case FilterLiked:
			if !j.Liked {
				continue
			}
		case FilterApplied:
			if !j.Applied {
				continue
			}
		}
		out = append(out, j)
	}
	return out
}

// SortJobs orders the slice in place. match: best match first.
// applicants: fewest first (less competition). salary: highest parsed
// amount first. date: newest first.
func SortJobs(jobs []Job, key SortKey, now time.Time) {
	sort.SliceStable(jobs, func(a, b int) bool {
		switch key {
		case SortApplicants:
			return jobs[a].Applicants < jobs[b].Applicants
		case SortSalary:
			return ParseSalary(jobs[a].Salary) > ParseSalary(jobs[b].Salary)
		case SortDate:
			return ParsePostedDate(jobs[a].PostedDate, now).After(ParsePostedDate(jobs[b].PostedDate, now))
		default:
			return jobs[a].MatchPercentage > jobs[b].MatchPercentage
		}
	})
}

// ParseSalary extracts the first numeric amount from a salary display string.
// A K/k suffix multiplies by 1000; anything unparseable is worth 0.
// "$90K/yr - $130K/yr" -> 90000, "$120,000 - $160,000" -> 120000.
func ParseSalary(s string) int {
	m := salaryRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	if m[2] != "" {
		n *= 1000
	}
	return n
}

// ParsePostedDate resolves a posting date string to a point in time.
// "N days ago" counts back from now; other strings are tried against
// common calendar layouts. Unparseable strings yield the zero time, which
// sorts after every real date.
func ParsePostedDate(s string, now time.Time) time.Time {
	if m := daysAgoRe.FindStringSubmatch(s); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil {
			return now.Add(-time.Duration(days) * 24 * time.Hour)
		}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "Jan 2, 2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}
