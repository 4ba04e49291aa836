package analytics

type Trend struct {
	Name   string `json:"name"`
	Value  int    `json:"value"`
	Change string `json:"change"`
}

type MarketMetrics struct {
	TAM          string  `json:"tam"`
	SAM          string  `json:"sam"`
	SOM          string  `json:"som"`
	GrowthRate   string  `json:"growthRate"`
	MarketTrends []Trend `json:"marketTrends"`
}

type RiskAssessment struct {
	MarketRisk      string `json:"marketRisk"`
	TechnicalRisk   string `json:"technicalRisk"`
	FinancialRisk   string `json:"financialRisk"`
	OperationalRisk string `json:"operationalRisk"`
}

type BusinessMetrics struct {
	SuccessScore         int            `json:"successScore"`
	InnovationPotential  int            `json:"innovationPotential"`
	MarketOpportunity    int            `json:"marketOpportunity"`
	CompetitiveAdvantage int            `json:"competitiveAdvantage"`
	RiskAssessment       RiskAssessment `json:"riskAssessment"`
}

type TaskMetrics struct {
	TotalTasks            int    `json:"totalTasks"`
	CompletedTasks        int    `json:"completedTasks"`
	HighPriorityTasks     int    `json:"highPriorityTasks"`
	MediumPriorityTasks   int    `json:"mediumPriorityTasks"`
	LowPriorityTasks      int    `json:"lowPriorityTasks"`
	CompletionRate        int    `json:"completionRate"`
	AverageCompletionTime string `json:"averageCompletionTime"`
}

type ValueCreation struct {
	ShortTermImpact    int      `json:"shortTermImpact"`
	LongTermStrategy   int      `json:"longTermStrategy"`
	ResourceEfficiency int      `json:"resourceEfficiency"`
	BalanceScore       string   `json:"balanceScore"`
	Recommendations    []string `json:"recommendations"`
}

type Competitor struct {
	Name        string   `json:"name"`
	MarketShare int      `json:"marketShare"`
	Strengths   []string `json:"strengths"`
}

type CompetitiveAnalysis struct {
	Innovation      int          `json:"innovation"`
	MarketFit       int          `json:"marketFit"`
	Scalability     int          `json:"scalability"`
	CompetitiveEdge int          `json:"competitiveEdge"`
	TopCompetitors  []Competitor `json:"topCompetitors"`
}

// Dashboard is the market analytics payload shown on the dashboard.
type Dashboard struct {
	MarketMetrics       MarketMetrics       `json:"marketMetrics"`
	BusinessMetrics     BusinessMetrics     `json:"businessMetrics"`
	TaskMetrics         TaskMetrics         `json:"taskMetrics"`
	ValueCreation       ValueCreation       `json:"valueCreation"`
	CompetitiveAnalysis CompetitiveAnalysis `json:"competitiveAnalysis"`
}

// SampleDashboard returns the fixed sample dataset. Each call returns a fresh copy.
func SampleDashboard() Dashboard {
	return Dashboard{
		MarketMetrics: MarketMetrics{
			TAM:        "$15.7B",
			SAM:        "$4.2B",
			SOM:        "$120M",
			GrowthRate: "8.2%",
			MarketTrends: []Trend{
				{Name: "AI Adoption", Value: 45, Change: "+12%"},
				{Name: "Remote Work", Value: 74, Change: "+8%"},
				{Name: "Digital Transformation", Value: 67, Change: "+15%"},
			},
		},
		BusinessMetrics: BusinessMetrics{
			SuccessScore:         75,
			InnovationPotential:  85,
			MarketOpportunity:    72,
			CompetitiveAdvantage: 68,
			RiskAssessment: RiskAssessment{
				MarketRisk:      "Medium",
				TechnicalRisk:   "Low",
				FinancialRisk:   "Medium",
				OperationalRisk: "Low",
			},
		},
		TaskMetrics: TaskMetrics{
			TotalTasks:            10,
			HighPriorityTasks:     5,
			MediumPriorityTasks:   5,
			AverageCompletionTime: "0 days",
		},
		ValueCreation: ValueCreation{
			ShortTermImpact:    65,
			LongTermStrategy:   80,
			ResourceEfficiency: 70,
			BalanceScore:       "Good",
			Recommendations: []string{
				"Focus on high-priority tasks first",
				"Allocate more resources to long-term strategy",
				"Monitor market trends regularly",
				"Build competitive differentiation",
			},
		},
		CompetitiveAnalysis: CompetitiveAnalysis{
			Innovation:      4,
			MarketFit:       4,
			Scalability:     5,
			CompetitiveEdge: 3,
			TopCompetitors: []Competitor{
				{Name: "Competitor A", MarketShare: 25, Strengths: []string{"Brand recognition", "Features"}},
				{Name: "Competitor B", MarketShare: 20, Strengths: []string{"Pricing", "Customer base"}},
				{Name: "Competitor C", MarketShare: 15, Strengths: []string{"Technology", "Innovation"}},
			},
		},
	}
}
