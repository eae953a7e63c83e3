package platforms

// LinkedInRecruiter is backed by LinkedIn OAuth; access tokens start with "AQ".
const LinkedInRecruiter = "LinkedIn Recruiter"

func NewLinkedInClient() Client {
	return oauthDemoClient{&demoClient{
		name:      LinkedInRecruiter,
		prefix:    "AQ",
		minLength: 12,
		provider:  "linkedin",
		latency:   defaultDemoLatency,
		batch: func(source string) []ExternalCandidate {
			return []ExternalCandidate{
				{
					FirstName:   "Amara",
					LastName:    "Okafor",
					Email:       "amara.okafor@example.com",
					LinkedinURL: "https://www.linkedin.com/in/amara-okafor",
					Skills:      []string{"Go", "Kubernetes", "PostgreSQL"},
					Experience:  "6 years backend engineering at fintech startups",
					Source:      source,
				},
				{
					FirstName:   "Lukas",
					LastName:    "Brandt",
					Email:       "lukas.brandt@example.com",
					LinkedinURL: "https://www.linkedin.com/in/lukas-brandt",
					Skills:      []string{"Product Management", "SQL"},
					Experience:  "Senior PM, B2B SaaS",
					Notes:       "Open to relocation",
					Source:      source,
				},
			}
		},
	}}
}
