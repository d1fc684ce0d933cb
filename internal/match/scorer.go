package match

import (
	"strings"
	"time"
)

// Weights for the four sub-scores. They sum to 1.0 so the total stays in [0,1].
const (
	weightSkills     = 0.4
	weightExperience = 0.3
	weightLocation   = 0.2
	weightSalary     = 0.1
)

const neutralScore = 0.5

// Score computes the weighted compatibility between a candidate and a posting.
// It is pure: no I/O, no mutation, deterministic for a fixed clock. Missing
// optional data yields neutral sub-scores rather than errors.
func Score(profile CandidateProfile, job JobPosting) MatchResult {
	return scoreAt(profile, job, time.Now())
}

func scoreAt(profile CandidateProfile, job JobPosting, now time.Time) MatchResult {
	r := MatchResult{
		SkillMatch:      skillMatch(profile.Skills, job.RequiredSkills),
		ExperienceMatch: experienceMatch(profile.Experiences, job.YearsRequired, now),
		LocationMatch:   locationMatch(profile.Location, job.Location),
		SalaryMatch:     salaryMatch(profile.SalaryExpectation, job.SalaryRange),
	}
	r.TotalScore = clamp01(weightSkills*r.SkillMatch +
		weightExperience*r.ExperienceMatch +
		weightLocation*r.LocationMatch +
		weightSalary*r.SalaryMatch)
	return r
}

// skillMatch is the fraction of required skills the candidate has, by exact
// case-insensitive name. No partial credit for synonyms.
func skillMatch(skills []Skill, required []string) float64 {
	if len(skills) == 0 || len(required) == 0 {
		return 0.0
	}
	have := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		have[strings.ToLower(s.Name)] = struct{}{}
	}
	want := make(map[string]struct{}, len(required))
	for _, name := range required {
		want[strings.ToLower(name)] = struct{}{}
	}
	matched := 0
	for name := range want {
		if _, ok := have[name]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(want))
}

// experienceMatch compares total years across experiences against the posting's
// requirement, capped at 1.0. Zero years required is an automatic pass.
func experienceMatch(experiences []Experience, yearsRequired int, now time.Time) float64 {
	if yearsRequired == 0 {
		return 1.0
	}
	total := 0
	for _, exp := range experiences {
		end := now
		if exp.EndDate != nil {
			end = *exp.EndDate
		}
		total += end.Year() - exp.StartDate.Year()
	}
	if total >= yearsRequired {
		return 1.0
	}
	return float64(total) / float64(yearsRequired)
}

// locationMatch returns 1.0 for remote postings, 1.0 when any comma-separated
// token of one location is contained in a token of the other, 0.5 when either
// location is unknown, and 0.0 otherwise.
func locationMatch(candidateLoc, jobLoc string) float64 {
	if candidateLoc == "" || jobLoc == "" {
		return neutralScore
	}
	if strings.Contains(strings.ToLower(jobLoc), "remote") {
		return 1.0
	}
	for _, cand := range splitTokens(candidateLoc) {
		for _, job := range splitTokens(jobLoc) {
			if strings.Contains(job, cand) || strings.Contains(cand, job) {
				return 1.0
			}
		}
	}
	return 0.0
}

func splitTokens(location string) []string {
	parts := strings.Split(strings.ToLower(location), ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// salaryMatch stays neutral unless both an expectation and a band are known.
// Inside or below the band scores 1.0, within 10% of a bound neutral, more
// than 10% over the maximum 0.0.
func salaryMatch(expectation *int, band *SalaryRange) float64 {
	if expectation == nil || band == nil || (band.Min == nil && band.Max == nil) {
		return neutralScore
	}
	want := float64(*expectation)
	if band.Min != nil && want < float64(*band.Min) {
		if want >= float64(*band.Min)*0.9 {
			return neutralScore
		}
		// Asking below the band is not a mismatch for the employer.
		return 1.0
	}
	if band.Max != nil && want > float64(*band.Max) {
		if want <= float64(*band.Max)*1.1 {
			return neutralScore
		}
		return 0.0
	}
	return 1.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
