package docgen

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"jobassist-backend/internal/match"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/workflow"
)

var ErrProfileUnavailable = errors.New("candidate profile unavailable")

// TemplateGenerator assembles application documents from the candidate profile
// and the posting. Output is deterministic for a given (profile, job) pair.
type TemplateGenerator struct {
	Profiles profiles.Repo
	Now      func() time.Time
}

func (g *TemplateGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now().UTC()
}

// GenerateResume builds a resume tailored to the posting. Skills the posting
// asks for are surfaced first, the rest follow in profile order.
func (g *TemplateGenerator) GenerateResume(ctx context.Context, userID string, job match.JobPosting) (workflow.Document, error) {
	profile, err := g.loadProfile(ctx, userID)
	if err != nil {
		return workflow.Document{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Resume for %s\n", userID)
	fmt.Fprintf(&b, "Target role: %s at %s\n\n", job.Title, job.Company)

	matched, rest := splitSkills(profile.Skills, job.RequiredSkills)
	if len(matched) > 0 {
		b.WriteString("Key skills for this role:\n")
		for _, s := range matched {
			writeSkillLine(&b, s)
		}
	}
	if len(rest) > 0 {
		b.WriteString("Additional skills:\n")
		for _, s := range rest {
			writeSkillLine(&b, s)
		}
	}

	if len(profile.Experiences) > 0 {
		b.WriteString("\nExperience:\n")
		for _, exp := range profile.Experiences {
			fmt.Fprintf(&b, "- %s, %s (%s)\n", exp.Position, exp.Company, experiencePeriod(exp))
			for _, a := range exp.Achievements {
				fmt.Fprintf(&b, "  * %s\n", a)
			}
		}
	}

	if len(profile.Projects) > 0 {
		b.WriteString("\nProjects:\n")
		for _, proj := range profile.Projects {
			fmt.Fprintf(&b, "- %s", proj.Name)
			if len(proj.Technologies) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(proj.Technologies, ", "))
			}
			b.WriteString("\n")
		}
	}

	return workflow.Document{
		Kind:        workflow.DocResume,
		Text:        b.String(),
		GeneratedAt: g.now(),
	}, nil
}

// GenerateCoverLetter builds a short cover letter referencing the posting and
// the candidate's strongest overlapping skills.
func (g *TemplateGenerator) GenerateCoverLetter(ctx context.Context, userID string, job match.JobPosting) (workflow.Document, error) {
	profile, err := g.loadProfile(ctx, userID)
	if err != nil {
		return workflow.Document{}, err
	}

	matched, _ := splitSkills(profile.Skills, job.RequiredSkills)
	var names []string
	for _, s := range matched {
		names = append(names, s.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s hiring team,\n\n", job.Company)
	fmt.Fprintf(&b, "I am writing to apply for the %s position.", job.Title)
	if len(names) > 0 {
		fmt.Fprintf(&b, " My background in %s maps directly onto what the role asks for.", joinNatural(names))
	}
	if years := totalYears(profile.Experiences, g.now()); years > 0 {
		fmt.Fprintf(&b, " I bring %d years of professional experience.", years)
	}
	b.WriteString("\n\nI would welcome the chance to discuss how I can contribute.\n\nBest regards")

	return workflow.Document{
		Kind:        workflow.DocCoverLetter,
		Text:        b.String(),
		GeneratedAt: g.now(),
	}, nil
}

// Refine applies requested changes by appending a revision section. Each change
// is recorded verbatim so the reviewer can see what was addressed.
func (g *TemplateGenerator) Refine(ctx context.Context, doc workflow.Document, changes []string) (workflow.Document, error) {
	if len(changes) == 0 {
		return doc, nil
	}
	var b strings.Builder
	b.WriteString(doc.Text)
	b.WriteString("\n\nRevisions:\n")
	for _, change := range changes {
		fmt.Fprintf(&b, "- %s\n", change)
	}
	doc.Text = b.String()
	doc.GeneratedAt = g.now()
	return doc, nil
}

func (g *TemplateGenerator) loadProfile(ctx context.Context, userID string) (match.CandidateProfile, error) {
	profile, err := g.Profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return match.CandidateProfile{}, fmt.Errorf("%w: no profile for user %s", ErrProfileUnavailable, userID)
		}
		return match.CandidateProfile{}, err
	}
	return profile, nil
}

// splitSkills partitions profile skills into those the posting requires and the
// rest, preserving profile order within each partition.
func splitSkills(skills []match.Skill, required []string) (matched, rest []match.Skill) {
	wanted := make(map[string]struct{}, len(required))
	for _, r := range required {
		wanted[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	for _, s := range skills {
		if _, ok := wanted[strings.ToLower(s.Name)]; ok {
			matched = append(matched, s)
		} else {
			rest = append(rest, s)
		}
	}
	return matched, rest
}

func writeSkillLine(b *strings.Builder, s match.Skill) {
	fmt.Fprintf(b, "- %s", s.Name)
	if s.YearsOfExperience > 0 {
		fmt.Fprintf(b, " (%d years)", s.YearsOfExperience)
	}
	b.WriteString("\n")
}

func experiencePeriod(exp match.Experience) string {
	start := exp.StartDate.Format("Jan 2006")
	if exp.EndDate == nil {
		return start + " - present"
	}
	return start + " - " + exp.EndDate.Format("Jan 2006")
}

func totalYears(exps []match.Experience, now time.Time) int {
	years := 0
	for _, exp := range exps {
		end := now
		if exp.EndDate != nil {
			end = *exp.EndDate
		}
		if d := end.Year() - exp.StartDate.Year(); d > 0 {
			years += d
		}
	}
	return years
}

func joinNatural(items []string) string {
	sort.Strings(items)
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
