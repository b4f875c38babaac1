package jobs

// SeedJobs returns the built-in posting set used when no external feed is
// wired up. Match percentages are static demo values, not computed.
func SeedJobs() []Job {
	return []Job{
		{
			ID:              "job-001",
			Title:           "Senior Backend Engineer",
			Company:         "Northwind Labs",
			Location:        "San Francisco, CA",
			Type:            "Full-time",
			WorkType:        "Hybrid",
			Salary:          "$160K/yr - $210K/yr",
			Description:     "Own the services behind our matching pipeline, from ingestion to ranking.",
			Requirements:    []string{"Go or similar systems language", "PostgreSQL", "5+ years backend experience"},
			PostedDate:      "2 days ago",
			MatchPercentage: 92,
			Level:           "Senior Level",
			Experience:      "5+ years",
			Applicants:      34,
			Country:         "US",
		},
		{
			ID:              "job-002",
			Title:           "Frontend Developer",
			Company:         "Brightside",
			Location:        "Remote",
			Type:            "Full-time",
			WorkType:        "Remote",
			Salary:          "$120,000 - $160,000",
			Description:     "Build the candidate-facing listing and application flows.",
			Requirements:    []string{"React", "TypeScript", "Accessibility fundamentals"},
			PostedDate:      "5 days ago",
			MatchPercentage: 85,
			Level:           "Mid Level",
			Experience:      "3+ years",
			Applicants:      128,
			Country:         "US",
		},
		{
			ID:              "job-003",
			Title:           "Platform Engineer",
			Company:         "Meridian Systems",
			Location:        "Austin, TX",
			Type:            "Full-time",
			WorkType:        "On-site",
			Salary:          "$140K/yr - $175K/yr",
			Description:     "Run the Kubernetes fleet and the deployment tooling on top of it.",
			Requirements:    []string{"Kubernetes", "Terraform", "On-call experience"},
			PostedDate:      "1 day ago",
			MatchPercentage: 78,
			Level:           "Mid Level",
			Experience:      "4+ years",
			Applicants:      52,
			Country:         "US",
		},
		{
			ID:              "job-004",
			Title:           "Machine Learning Engineer",
			Company:         "Kestrel AI",
			Location:        "New York, NY",
			Type:            "Full-time",
			WorkType:        "Hybrid",
			Salary:          "$180,000 - $230,000",
			Description:     "Productionize ranking models and keep their latency budget honest.",
			Requirements:    []string{"Python", "Model serving", "Feature pipelines"},
			PostedDate:      "3 days ago",
			MatchPercentage: 88,
			Level:           "Senior Level",
			Experience:      "4+ years",
			Applicants:      97,
			Country:         "US",
		},
		{
			ID:              "job-005",
			Title:           "DevOps Engineer",
			Company:         "Harbor Freight Digital",
			Location:        "Calabasas, CA",
			Type:            "Contract",
			WorkType:        "Remote",
			Salary:          "$90K/yr - $130K/yr",
			Description:     "Six-month contract hardening the CI/CD path for the storefront teams.",
			Requirements:    []string{"GitHub Actions", "AWS", "Observability tooling"},
			PostedDate:      "7 days ago",
			MatchPercentage: 71,
			Level:           "Mid Level",
			Experience:      "3+ years",
			Applicants:      21,
			Country:         "US",
		},
		{
			ID:              "job-006",
			Title:           "Engineering Manager, Search",
			Company:         "Northwind Labs",
			Location:        "San Francisco, CA",
			Type:            "Full-time",
			WorkType:        "Hybrid",
			Salary:          "$200K/yr - $250K/yr",
			Description:     "Lead the team that owns query understanding and result ranking.",
			Requirements:    []string{"People management", "Search or recsys background"},
			PostedDate:      "2024-11-08",
			MatchPercentage: 64,
			Level:           "Senior Level",
			Experience:      "8+ years",
			Applicants:      45,
			Country:         "US",
		},
		{
			ID:              "job-007",
			Title:           "Junior Software Engineer",
			Company:         "Plover",
			Location:        "Toronto, ON",
			Type:            "Full-time",
			WorkType:        "On-site",
			Salary:          "CAD $85,000 - $105,000",
			Description:     "Rotate across product teams for the first year, then settle where you fit.",
			Requirements:    []string{"Any modern language", "CS fundamentals"},
			PostedDate:      "4 days ago",
			MatchPercentage: 81,
			Level:           "Entry Level",
			Experience:      "0-2 years",
			Applicants:      203,
			Country:         "CA",
		},
		{
			ID:              "job-008",
			Title:           "Site Reliability Engineer",
			Company:         "Atlas Health",
			Location:        "Remote",
			Type:            "Full-time",
			WorkType:        "Remote",
			Salary:          "Competitive",
			Description:     "Keep the clinical scheduling platform inside its SLOs.",
			Requirements:    []string{"Incident response", "Linux internals", "Prometheus"},
			PostedDate:      "10 days ago",
			MatchPercentage: 75,
			Level:           "Mid Level",
			Experience:      "4+ years",
			Applicants:      66,
			Country:         "US",
		},
	}
}
