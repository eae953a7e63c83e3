package platforms

const Indeed = "Indeed"

// NewIndeedClient accepts API keys of the form "indeed-<id>".
func NewIndeedClient() Client {
	return &demoClient{
		name:      Indeed,
		prefix:    "indeed-",
		minLength: 10,
		latency:   defaultDemoLatency,
		batch: func(source string) []ExternalCandidate {
			return []ExternalCandidate{
				{
					FirstName:  "Maria",
					LastName:   "Gonzalez",
					Email:      "maria.gonzalez@example.com",
					Phone:      "+1-555-0134",
					Skills:     []string{"Customer Support", "Zendesk"},
					Experience: "4 years support lead",
					Source:     source,
				},
				{
					FirstName: "Daniel",
					LastName:  "Kim",
					Email:     "daniel.kim@example.com",
					Skills:    []string{"Accounting", "Excel"},
					Notes:     "Referred by hiring manager",
					Source:    source,
				},
				{
					FirstName:  "Priya",
					LastName:   "Nair",
					Email:      "priya.nair@example.com",
					Skills:     []string{"React", "TypeScript"},
					Experience: "Frontend developer, 3 years",
					Source:     source,
				},
			}
		},
	}
}
