package platforms

const HeadHunter = "HeadHunter"

// NewHeadHunterClient is the regional job board; keys start with "hh-".
func NewHeadHunterClient() Client {
	return &demoClient{
		name:      HeadHunter,
		prefix:    "hh-",
		minLength: 8,
		latency:   defaultDemoLatency,
		batch: func(source string) []ExternalCandidate {
			return []ExternalCandidate{
				{
					FirstName:  "Aigerim",
					LastName:   "Sarsenova",
					Email:      "aigerim.sarsenova@example.kz",
					Phone:      "+7-701-555-0190",
					Skills:     []string{"1C", "Financial Reporting"},
					Experience: "Chief accountant, 8 years",
					Source:     source,
				},
				{
					FirstName: "Timur",
					LastName:  "Akhmetov",
					Email:     "timur.akhmetov@example.kz",
					Skills:    []string{"Java", "Spring"},
					Source:    source,
				},
			}
		},
	}
}
