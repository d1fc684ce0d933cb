package match

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year, month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func intPtr(v int) *int { return &v }

func TestSkillMatch(t *testing.T) {
	cases := []struct {
		name     string
		skills   []string
		required []string
		want     float64
	}{
		{"no required skills", []string{"go"}, nil, 0.0},
		{"no candidate skills", nil, []string{"go"}, 0.0},
		{"full overlap", []string{"go", "sql"}, []string{"go", "sql"}, 1.0},
		{"partial overlap", []string{"python", "sql"}, []string{"python", "sql", "aws"}, 2.0 / 3.0},
		{"case insensitive", []string{"Python"}, []string{"python"}, 1.0},
		{"no synonym credit", []string{"golang"}, []string{"go"}, 0.0},
		{"duplicate required collapses", []string{"go"}, []string{"go", "Go"}, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			skills := make([]Skill, 0, len(tc.skills))
			for _, name := range tc.skills {
				skills = append(skills, Skill{Name: name, Category: CategoryTechnical})
			}
			got := skillMatch(skills, tc.required)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("skillMatch = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExperienceMatchZeroYearsRequired(t *testing.T) {
	now := date(2026, 6, 1)
	if got := experienceMatch(nil, 0, now); got != 1.0 {
		t.Fatalf("no experience, zero required: got %v, want 1.0", got)
	}
	exps := []Experience{{Company: "Acme", Position: "Dev", StartDate: date(2020, 1, 1)}}
	if got := experienceMatch(exps, 0, now); got != 1.0 {
		t.Fatalf("zero required with experience: got %v, want 1.0", got)
	}
}

func TestExperienceMatchSumsAcrossJobs(t *testing.T) {
	now := date(2026, 6, 1)
	exps := []Experience{
		{Company: "Acme", Position: "Dev", StartDate: date(2018, 1, 1), EndDate: datePtr(2020, 1, 1)},
		{Company: "Globex", Position: "Dev", StartDate: date(2020, 1, 1), EndDate: datePtr(2022, 1, 1)},
	}
	if got := experienceMatch(exps, 3, now); got != 1.0 {
		t.Fatalf("4 years vs 3 required: got %v, want 1.0", got)
	}
	if got := experienceMatch(exps, 8, now); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("4 years vs 8 required: got %v, want 0.5", got)
	}
}

func TestExperienceMatchOpenEndedUsesNow(t *testing.T) {
	now := date(2026, 6, 1)
	exps := []Experience{{Company: "Acme", Position: "Dev", StartDate: date(2023, 1, 1)}}
	if got := experienceMatch(exps, 3, now); got != 1.0 {
		t.Fatalf("open-ended 3 years vs 3 required: got %v, want 1.0", got)
	}
}

func TestLocationMatch(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
		job       string
		want      float64
	}{
		{"remote job always matches", "New York", "Remote", 1.0},
		{"remote in longer text", "Boston, MA", "Remote (US timezones)", 1.0},
		{"token substring both ways", "San Francisco, CA", "SF, CA", 1.0},
		{"no shared token", "Boston, MA", "Seattle, WA", 0.0},
		{"missing candidate location", "", "Remote", 0.5},
		{"missing job location", "Boston, MA", "", 0.5},
		{"same city", "Austin, TX", "Austin, TX", 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := locationMatch(tc.candidate, tc.job); got != tc.want {
				t.Fatalf("locationMatch(%q, %q) = %v, want %v", tc.candidate, tc.job, got, tc.want)
			}
		})
	}
}

func TestSalaryMatch(t *testing.T) {
	band := &SalaryRange{Min: intPtr(100000), Max: intPtr(140000)}
	cases := []struct {
		name        string
		expectation *int
		band        *SalaryRange
		want        float64
	}{
		{"no band", intPtr(120000), nil, 0.5},
		{"no expectation", nil, band, 0.5},
		{"inside band", intPtr(120000), band, 1.0},
		{"below band", intPtr(80000), band, 1.0},
		{"just below band", intPtr(95000), band, 0.5},
		{"just above band", intPtr(150000), band, 0.5},
		{"far above band", intPtr(200000), band, 0.0},
		{"empty band", intPtr(120000), &SalaryRange{}, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := salaryMatch(tc.expectation, tc.band); got != tc.want {
				t.Fatalf("salaryMatch = %v, want %v", got, tc.want)
			}
		})
	}
}

// The worked end-to-end case: two of three required skills, enough experience,
// remote posting, no salary data on either side.
func TestScoreScenario(t *testing.T) {
	profile := CandidateProfile{
		UserID: "user-1",
		Skills: []Skill{
			{Name: "python", Category: CategoryTechnical},
			{Name: "sql", Category: CategoryTechnical},
		},
		Experiences: []Experience{
			{Company: "Acme", Position: "Engineer", StartDate: date(2018, 1, 1), EndDate: datePtr(2022, 1, 1)},
		},
		Location: "Boston, MA",
	}
	job := JobPosting{
		ID:             "job-1",
		Title:          "Data Engineer",
		Company:        "Globex",
		Location:       "Remote",
		RequiredSkills: []string{"python", "sql", "aws"},
		YearsRequired:  3,
	}

	r := scoreAt(profile, job, date(2026, 6, 1))

	if math.Abs(r.SkillMatch-2.0/3.0) > 1e-9 {
		t.Fatalf("SkillMatch = %v, want 0.667", r.SkillMatch)
	}
	if r.ExperienceMatch != 1.0 {
		t.Fatalf("ExperienceMatch = %v, want 1.0", r.ExperienceMatch)
	}
	if r.LocationMatch != 1.0 {
		t.Fatalf("LocationMatch = %v, want 1.0", r.LocationMatch)
	}
	if r.SalaryMatch != 0.5 {
		t.Fatalf("SalaryMatch = %v, want 0.5", r.SalaryMatch)
	}
	want := 0.4*(2.0/3.0) + 0.3*1.0 + 0.2*1.0 + 0.1*0.5
	if math.Abs(r.TotalScore-want) > 1e-9 {
		t.Fatalf("TotalScore = %v, want %v", r.TotalScore, want)
	}
}

func TestTotalScoreAlwaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		profile := CandidateProfile{
			UserID:   "user",
			Location: randomLocation(rng),
		}
		for j := 0; j < rng.Intn(6); j++ {
			profile.Skills = append(profile.Skills, Skill{Name: randomSkill(rng), Category: CategoryTechnical})
		}
		for j := 0; j < rng.Intn(4); j++ {
			start := date(2000+rng.Intn(20), 1+rng.Intn(12), 1)
			exp := Experience{Company: "c", Position: "p", StartDate: start}
			if rng.Intn(2) == 0 {
				end := start.AddDate(rng.Intn(10), 0, 0)
				exp.EndDate = &end
			}
			profile.Experiences = append(profile.Experiences, exp)
		}
		if rng.Intn(3) == 0 {
			profile.SalaryExpectation = intPtr(50000 + rng.Intn(200000))
		}

		job := JobPosting{
			ID:            "job",
			Title:         "t",
			Company:       "c",
			Location:      randomLocation(rng),
			YearsRequired: rng.Intn(15),
		}
		for j := 0; j < rng.Intn(6); j++ {
			job.RequiredSkills = append(job.RequiredSkills, randomSkill(rng))
		}
		if rng.Intn(3) == 0 {
			lo := 50000 + rng.Intn(100000)
			hi := lo + rng.Intn(100000)
			job.SalaryRange = &SalaryRange{Min: &lo, Max: &hi}
		}

		r := scoreAt(profile, job, date(2026, 6, 1))
		if r.TotalScore < 0 || r.TotalScore > 1 {
			t.Fatalf("iteration %d: TotalScore %v out of [0,1] (%+v)", i, r.TotalScore, r)
		}
	}
}

func randomSkill(rng *rand.Rand) string {
	pool := []string{"go", "python", "sql", "aws", "react", "kubernetes", "terraform"}
	return pool[rng.Intn(len(pool))]
}

func randomLocation(rng *rand.Rand) string {
	pool := []string{"", "Remote", "Boston, MA", "Seattle, WA", "San Francisco, CA", "Austin, TX"}
	return pool[rng.Intn(len(pool))]
}

func TestPriorityForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  Priority
	}{
		{0.95, PriorityUrgent},
		{0.9, PriorityUrgent},
		{0.85, PriorityHigh},
		{0.8, PriorityHigh},
		{0.7, PriorityMedium},
		{0.6, PriorityMedium},
		{0.59, PriorityLow},
		{0.0, PriorityLow},
	}
	for _, tc := range cases {
		if got := PriorityForScore(tc.score); got != tc.want {
			t.Fatalf("PriorityForScore(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
