package recommend

import "github.com/signalworks/pulse/internal/profile"

// Focus area tags users opt into via preferences.
const (
	FocusRevenueGrowth       = "Revenue Growth"
	FocusOperationalEff      = "Operational Efficiency"
	FocusCustomerAcquisition = "Customer Acquisition"
	FocusTeamManagement      = "Team Management"
	FocusFinancialHealth     = "Financial Health"
	FocusMarketingSales      = "Marketing & Sales"
)

// Generator produces candidates for one focus area by filtering a static
// catalog against the business profile. Pure and side-effect free; missing
// profile fields widen applicability instead of erroring.
type Generator struct {
	FocusArea string
	catalog   []Candidate
}

// Generate returns the catalog entries applicable to the profile, in
// catalog order.
func (g Generator) Generate(p profile.BusinessProfile) []Candidate {
	var out []Candidate
	for _, c := range g.catalog {
		if c.appliesTo(p) {
			out = append(out, c)
		}
	}
	return out
}

// Generators returns the full generator set in its fixed evaluation order.
// The order is part of the determinism contract: candidates enter scoring
// in this order, and stable selection preserves it across ties.
func Generators() []Generator {
	return []Generator{
		{FocusRevenueGrowth, revenueGrowthCatalog},
		{FocusOperationalEff, efficiencyCatalog},
		{FocusCustomerAcquisition, acquisitionCatalog},
		{FocusTeamManagement, teamCatalog},
		{FocusFinancialHealth, financialCatalog},
		{FocusMarketingSales, marketingCatalog},
	}
}

// GenerateAll runs the generators whose focus area the user opted into and
// concatenates their output in generator order.
func GenerateAll(p profile.BusinessProfile, prefs profile.UserPreferences) []Candidate {
	var out []Candidate
	for _, g := range Generators() {
		if prefs.HasFocusArea(g.FocusArea) {
			out = append(out, g.Generate(p)...)
		}
	}
	return out
}

var revenueGrowthCatalog = []Candidate{
	{
		Type:         "revenue_growth",
		Title:        "Introduce maintenance plans",
		Description:  "Offer annual service agreements with priority scheduling. Recurring plans smooth out seasonal revenue dips and lift customer lifetime value.",
		BasePriority: PriorityHigh,
		Complexity:   profile.ComplexityModerate,
		Industries:   []string{"plumbing", "hvac", "electrical"},
	},
	{
		Type:          "revenue_growth",
		Title:         "Raise your emergency call-out fee",
		Description:   "After-hours emergency work commands a premium. Review what competitors charge and price urgency accordingly.",
		BasePriority:  PriorityHigh,
		Complexity:    profile.ComplexitySimple,
		BusinessSizes: []string{"solo", "small"},
	},
	{
		Type:         "revenue_growth",
		Title:        "Bundle inspections with completed jobs",
		Description:  "A whole-home inspection at the end of a service call surfaces follow-up work while you're already on site.",
		BasePriority: PriorityMedium,
		Complexity:   profile.ComplexitySimple,
	},
	{
		Type:          "revenue_growth",
		Title:         "Add financing options for large jobs",
		Description:   "Partnering with a consumer financing provider closes bigger tickets that customers can't pay up front.",
		BasePriority:  PriorityMedium,
		Complexity:    profile.ComplexityAdvanced,
		BusinessSizes: []string{"medium", "large"},
	},
}

var efficiencyCatalog = []Candidate{
	{
		Type:         "efficiency",
		Title:        "Batch jobs by neighborhood",
		Description:  "Group same-day jobs geographically to cut windshield time. Most small service businesses recover 3-5 hours a week this way.",
		BasePriority: PriorityHigh,
		Complexity:   profile.ComplexitySimple,
	},
	{
		Type:         "efficiency",
		Title:        "Standardize your truck stock",
		Description:  "A fixed parts list per vehicle ends mid-job supply-house runs. Audit the last month of jobs to build the list.",
		BasePriority: PriorityMedium,
		Complexity:   profile.ComplexityModerate,
		Industries:   []string{"plumbing", "hvac", "electrical"},
	},
	{
		Type:         "efficiency",
		Title:        "Use job templates for common work",
		Description:  "Pre-built checklists and parts lists for your ten most frequent job types shave setup time off every visit.",
		BasePriority: PriorityMedium,
		Complexity:   profile.ComplexitySimple,
	},
	{
		Type:          "efficiency",
		Title:         "Automate invoice follow-ups",
		Description:   "Scheduled reminders at 7, 14, and 30 days chase unpaid invoices without anyone having to remember.",
		BasePriority:  PriorityMedium,
		Complexity:    profile.ComplexityAdvanced,
		BusinessSizes: []string{"small", "medium", "large"},
	},
}

var acquisitionCatalog = []Candidate{
	{
		Type:         "customer_acquisition",
		Title:        "Claim and complete your Google Business Profile",
		Description:  "A complete profile with photos and service areas is the single highest-leverage free listing for local service searches.",
		BasePriority: PriorityHigh,
		Complexity:   profile.ComplexitySimple,
	},
	{
		Type:         "customer_acquisition",
		Title:        "Set up a referral reward",
		Description:  "A small credit for both referrer and referred turns satisfied customers into a repeatable acquisition channel.",
		BasePriority: PriorityMedium,
		Complexity:   profile.ComplexitySimple,
	},
	{
		Type:          "customer_acquisition",
		Title:         "Join a contractor referral network",
		Description:   "Adjacent trades (plumbers, electricians, HVAC) send each other work they can't take. Formalize two or three of those relationships.",
		BasePriority:  PriorityMedium,
		Complexity:    profile.ComplexityModerate,
		Industries:    []string{"plumbing", "hvac", "electrical", "general_contracting"},
		BusinessSizes: []string{"solo", "small"},
	},
}

var teamCatalog = []Candidate{
	{
		Type:          "team_management",
		Title:         "Hold a weekly 15-minute schedule huddle",
		Description:   "One short standing meeting keeps dispatch, callbacks, and parts orders from colliding mid-week.",
		BasePriority:  PriorityMedium,
		Complexity:    profile.ComplexitySimple,
		BusinessSizes: []string{"small", "medium", "large"},
	},
	{
		Type:          "team_management",
		Title:         "Write down your top three processes",
		Description:   "Documenting intake, quoting, and closing means a new hire can cover for you instead of everything routing through the owner.",
		BasePriority:  PriorityHigh,
		Complexity:    profile.ComplexityModerate,
		BusinessSizes: []string{"solo", "small"},
	},
	{
		Type:          "team_management",
		Title:         "Introduce a technician scorecard",
		Description:   "Track callbacks, on-time rate, and revenue per tech monthly. What gets measured gets coached.",
		BasePriority:  PriorityMedium,
		Complexity:    profile.ComplexityAdvanced,
		BusinessSizes: []string{"medium", "large"},
	},
}

var financialCatalog = []Candidate{
	{
		Type:         "financial_health",
		Title:        "Separate business and personal accounts",
		Description:  "A dedicated business account makes quarterly taxes, margins, and cash-flow visibility possible at all.",
		BasePriority: PriorityHigh,
		Complexity:   profile.ComplexitySimple,
		BusinessSizes: []string{"solo"},
	},
	{
		Type:         "financial_health",
		Title:        "Review your job-level margins quarterly",
		Description:  "Price lists drift while costs don't. A quarterly margin review by job type catches work you're quietly losing money on.",
		BasePriority: PriorityHigh,
		Complexity:   profile.ComplexityModerate,
	},
	{
		Type:          "financial_health",
		Title:         "Build a 13-week cash-flow forecast",
		Description:   "A rolling forecast shows payroll crunches a quarter ahead, while there's still time to act.",
		BasePriority:  PriorityMedium,
		Complexity:    profile.ComplexityAdvanced,
		BusinessSizes: []string{"medium", "large"},
	},
}

var marketingCatalog = []Candidate{
	{
		Type:         "marketing",
		Title:        "Ask for reviews after every job",
		Description:  "A text with a direct review link within an hour of job completion converts far better than any later follow-up.",
		BasePriority: PriorityHigh,
		Complexity:   profile.ComplexitySimple,
	},
	{
		Type:         "marketing",
		Title:        "Photograph before-and-after on every job",
		Description:  "A library of real local job photos feeds your website, socials, and quotes with zero extra marketing spend.",
		BasePriority: PriorityMedium,
		Complexity:   profile.ComplexitySimple,
		Industries:   []string{"plumbing", "hvac", "electrical", "cleaning", "landscaping"},
	},
	{
		Type:          "marketing",
		Title:         "Run a seasonal service campaign",
		Description:   "Time an email and postcard push to your seasonal peak (pre-summer AC, pre-winter furnace, spring cleanups).",
		BasePriority:  PriorityMedium,
		Complexity:    profile.ComplexityModerate,
		Industries:    []string{"hvac", "landscaping", "cleaning"},
	},
	{
		Type:          "marketing",
		Title:         "Track which channel each new customer came from",
		Description:   "One intake question ('how did you hear about us?') tells you where to spend next year's marketing budget.",
		BasePriority:  PriorityMedium,
		Complexity:    profile.ComplexityAdvanced,
		BusinessSizes: []string{"small", "medium", "large"},
	},
}
