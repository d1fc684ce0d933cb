package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SkillCategory classifies a candidate skill.
type SkillCategory string

const (
	CategoryTechnical     SkillCategory = "technical"
	CategorySoft          SkillCategory = "soft"
	CategoryLanguage      SkillCategory = "language"
	CategoryCertification SkillCategory = "certification"
)

// Skill is a single capability on a candidate profile.
type Skill struct {
	Name              string        `json:"name"`
	Category          SkillCategory `json:"category"`
	Proficiency       string        `json:"proficiency,omitempty"`
	YearsOfExperience int           `json:"yearsOfExperience,omitempty"`
	Verified          bool          `json:"verified"`
}

// Experience is one work history entry.
type Experience struct {
	Company      string     `json:"company"`
	Position     string     `json:"position"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Description  string     `json:"description,omitempty"`
	Achievements []string   `json:"achievements,omitempty"`
}

// Project is a personal or professional project on a profile.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// CandidateProfile is the knowledge-graph view of a user consumed by the scorer.
type CandidateProfile struct {
	UserID            string       `json:"userId"`
	Skills            []Skill      `json:"skills"`
	Experiences       []Experience `json:"experiences"`
	Projects          []Project    `json:"projects,omitempty"`
	Location          string       `json:"location,omitempty"`
	SalaryExpectation *int         `json:"salaryExpectation,omitempty"`
}

// SalaryRange is the advertised compensation band on a posting.
type SalaryRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// JobPosting is a discovered job opening.
type JobPosting struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Company        string       `json:"company"`
	CompanyID      string       `json:"companyId,omitempty"`
	Location       string       `json:"location,omitempty"`
	RequiredSkills []string     `json:"requiredSkills"`
	YearsRequired  int          `json:"yearsRequired"`
	SalaryRange    *SalaryRange `json:"salaryRange,omitempty"`
	Remote         bool         `json:"remote"`
	Source         string       `json:"source,omitempty"`
}

// MatchResult holds the four sub-scores and the weighted total. It is computed
// once per (profile, job) pair and never mutated afterwards.
type MatchResult struct {
	SkillMatch      float64 `json:"skillMatch"`
	ExperienceMatch float64 `json:"experienceMatch"`
	LocationMatch   float64 `json:"locationMatch"`
	SalaryMatch     float64 `json:"salaryMatch"`
	TotalScore      float64 `json:"totalScore"`
}

var (
	ErrInvalidDates  = errors.New("experience end date precedes start date")
	ErrInvalidSalary = errors.New("salary range max below min")
)

// Validate checks structural invariants on a profile: experience date ordering
// and corroboration of verified skills.
func (p CandidateProfile) Validate() error {
	for _, exp := range p.Experiences {
		if exp.EndDate != nil && exp.EndDate.Before(exp.StartDate) {
			return fmt.Errorf("experience %q at %q: %w", exp.Position, exp.Company, ErrInvalidDates)
		}
	}
	for _, skill := range p.Skills {
		if !skill.Verified {
			continue
		}
		if !p.corroborates(skill.Name) {
			return fmt.Errorf("verified skill %q has no supporting experience or project", skill.Name)
		}
	}
	return nil
}

// corroborates reports whether any experience or project mentions the skill name.
func (p CandidateProfile) corroborates(skillName string) bool {
	needle := strings.ToLower(skillName)
	for _, exp := range p.Experiences {
		if strings.Contains(strings.ToLower(exp.Description), needle) {
			return true
		}
		for _, a := range exp.Achievements {
			if strings.Contains(strings.ToLower(a), needle) {
				return true
			}
		}
	}
	for _, proj := range p.Projects {
		if strings.Contains(strings.ToLower(proj.Description), needle) {
			return true
		}
		for _, tech := range proj.Technologies {
			if strings.Contains(strings.ToLower(tech), needle) {
				return true
			}
		}
	}
	return false
}

// Validate checks the posting's salary band ordering.
func (j JobPosting) Validate() error {
	if j.YearsRequired < 0 {
		return fmt.Errorf("years required must be >= 0, got %d", j.YearsRequired)
	}
	if j.SalaryRange != nil && j.SalaryRange.Min != nil && j.SalaryRange.Max != nil {
		if *j.SalaryRange.Max < *j.SalaryRange.Min {
			return ErrInvalidSalary
		}
	}
	return nil
}
