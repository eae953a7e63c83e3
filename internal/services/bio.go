package services

import (
	"strings"

	"recruitsync_backend/internal/models"
)

// ComposeBio builds an employee bio from the candidate profile. Each present
// field becomes a labeled section; absent ones are left out.
func ComposeBio(c *models.Candidate) string {
	var sections []string

	if skills := cleanSkills(c.Skills); len(skills) > 0 {
		sections = append(sections, "Skills: "+strings.Join(skills, ", "))
	}
	if c.Experience != nil && strings.TrimSpace(*c.Experience) != "" {
		sections = append(sections, "Experience: "+strings.TrimSpace(*c.Experience))
	}
	if c.Notes != nil && strings.TrimSpace(*c.Notes) != "" {
		sections = append(sections, "Notes: "+strings.TrimSpace(*c.Notes))
	}

	return strings.Join(sections, "\n\n")
}
