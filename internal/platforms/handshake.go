package platforms

const Handshake = "Handshake"

// NewHandshakeClient serves early-career candidates; keys start with "hs_".
func NewHandshakeClient() Client {
	return &demoClient{
		name:      Handshake,
		prefix:    "hs_",
		minLength: 8,
		latency:   defaultDemoLatency,
		batch: func(source string) []ExternalCandidate {
			return []ExternalCandidate{
				{
					FirstName:  "Jordan",
					LastName:   "Lee",
					Email:      "jordan.lee@university.example.edu",
					Skills:     []string{"Python", "Data Analysis"},
					Experience: "Summer intern, analytics team",
					Notes:      "Graduates in May",
					Source:     source,
				},
			}
		},
	}
}
