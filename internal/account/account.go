package account

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrUnknownPackage = errors.New("unknown credit package")
	ErrUnknownPlan    = errors.New("unknown subscription plan")
)

// Profile is the job seeker's editable identity card.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Headline string `json:"headline,omitempty"`
	Location string `json:"location,omitempty"`
	Resume   string `json:"resume,omitempty"`
}

// Settings holds the notification and appearance toggles.
type Settings struct {
	EmailNotifications bool `json:"email_notifications"`
	JobAlerts          bool `json:"job_alerts"`
	MarketingEmails    bool `json:"marketing_emails"`
	DarkMode           bool `json:"dark_mode"`
}

// CreditPackage is one purchasable top-up option.
type CreditPackage struct {
	ID      string  `json:"id"`
	Credits int     `json:"credits"`
	PriceUS float64 `json:"price_usd"`
}

// CreditBalance is the current balance plus the catalog of packages.
type CreditBalance struct {
	Balance  int             `json:"balance"`
	Packages []CreditPackage `json:"packages"`
}

// Purchase records one completed credit top-up.
type Purchase struct {
	PackageID   string    `json:"package_id"`
	Credits     int       `json:"credits"`
	PriceUS     float64   `json:"price_usd"`
	NewBalance  int       `json:"new_balance"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// Plan is one subscription tier.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PriceMonthly float64  `json:"price_monthly_usd"`
	Features     []string `json:"features"`
}

// Subscription is the active tier plus the catalog of plans.
type Subscription struct {
	PlanID    string    `json:"plan_id"`
	Plans     []Plan    `json:"plans"`
	ChangedAt time.Time `json:"changed_at"`
}

const seedCredits = 150

var creditPackages = []CreditPackage{
	{ID: "starter", Credits: 50, PriceUS: 9.99},
	{ID: "standard", Credits: 100, PriceUS: 17.99},
	{ID: "plus", Credits: 250, PriceUS: 39.99},
	{ID: "max", Credits: 500, PriceUS: 69.99},
}

var plans = []Plan{
	{ID: "free", Name: "Free", PriceMonthly: 0, Features: []string{
		"10 job matches per week",
		"Basic resume feedback",
	}},
	{ID: "pro", Name: "Pro", PriceMonthly: 19, Features: []string{
		"Unlimited job matches",
		"Avatar interview practice",
		"Priority application review",
	}},
	{ID: "premium", Name: "Premium", PriceMonthly: 39, Features: []string{
		"Everything in Pro",
		"Dedicated career agent",
		"Salary negotiation coaching",
	}},
}

// Service keeps a single user's account state in memory, guarded by one
// mutex. Persistence is out of scope for the account surface.
type Service struct {
	mu          sync.Mutex
	profile     Profile
	settings    Settings
	credits     int
	planID      string
	planChanged time.Time
	now         func() time.Time
}

func NewService() *Service {
	return &Service{
		profile: Profile{
			Name:  "Job Seeker",
			Email: "seeker@example.com",
		},
		settings: Settings{
			EmailNotifications: true,
			JobAlerts:          true,
		},
		credits:     seedCredits,
		planID:      "free",
		planChanged: time.Now().UTC(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// UpdateProfile overwrites only the non-blank fields of the patch.
func (s *Service) UpdateProfile(patch Profile) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(patch.Name) != "" {
		s.profile.Name = strings.TrimSpace(patch.Name)
	}
	if strings.TrimSpace(patch.Email) != "" {
		s.profile.Email = strings.TrimSpace(patch.Email)
	}
	if strings.TrimSpace(patch.Headline) != "" {
		s.profile.Headline = strings.TrimSpace(patch.Headline)
	}
	if strings.TrimSpace(patch.Location) != "" {
		s.profile.Location = strings.TrimSpace(patch.Location)
	}
	if strings.TrimSpace(patch.Resume) != "" {
		s.profile.Resume = patch.Resume
	}
	return s.profile
}

func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces all toggles at once; clients send the full set.
func (s *Service) UpdateSettings(next Settings) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = next
	return s.settings
}

func (s *Service) Credits() CreditBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CreditBalance{Balance: s.credits, Packages: packagesCopy()}
}

// Purchase credits one package's amount to the balance. Payment capture
// happens upstream; this only settles the balance.
func (s *Service) Purchase(packageID string) (Purchase, error) {
	var pkg *CreditPackage
	for i := range creditPackages {
		if creditPackages[i].ID == packageID {
			pkg = &creditPackages[i]
			break
		}
	}
	if pkg == nil {
		return Purchase{}, ErrUnknownPackage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits += pkg.Credits
	return Purchase{
		PackageID:   pkg.ID,
		Credits:     pkg.Credits,
		PriceUS:     pkg.PriceUS,
		NewBalance:  s.credits,
		PurchasedAt: s.now(),
	}, nil
}

// Spend deducts credits if the balance covers the amount; it reports
// whether the deduction happened.
func (s *Service) Spend(amount int) (int, bool) {
	if amount <= 0 {
		return s.Credits().Balance, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credits < amount {
		return s.credits, false
	}
	s.credits -= amount
	return s.credits, true
}

func (s *Service) Subscription() Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subscription{PlanID: s.planID, Plans: plansCopy(), ChangedAt: s.planChanged}
}

// ChangePlan switches the active tier. Billing proration is out of
// scope; the switch takes effect immediately.
func (s *Service) ChangePlan(planID string) (Subscription, error) {
	found := false
	for _, p := range plans {
		if p.ID == planID {
			found = true
			break
		}
	}
	if !found {
		return Subscription{}, ErrUnknownPlan
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.planID = planID
	s.planChanged = s.now()
	return Subscription{PlanID: s.planID, Plans: plansCopy(), ChangedAt: s.planChanged}, nil
}

func packagesCopy() []CreditPackage {
	out := make([]CreditPackage, len(creditPackages))
	copy(out, creditPackages)
	return out
}

func plansCopy() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}
