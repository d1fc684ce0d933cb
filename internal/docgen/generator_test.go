package docgen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobassist-backend/internal/match"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/workflow"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func seedProfile(t *testing.T) (*TemplateGenerator, match.CandidateProfile) {
	t.Helper()
	start := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	profile := match.CandidateProfile{
		UserID: "user-1",
		Skills: []match.Skill{
			{Name: "Go", Category: match.CategoryTechnical, YearsOfExperience: 4},
			{Name: "Kubernetes", Category: match.CategoryTechnical},
			{Name: "Mentoring", Category: match.CategorySoft},
		},
		Experiences: []match.Experience{
			{
				Company:      "Initech",
				Position:     "Backend Engineer",
				StartDate:    start,
				Achievements: []string{"Cut p99 latency in half"},
			},
		},
		Projects: []match.Project{
			{Name: "homelab", Technologies: []string{"Go", "Terraform"}},
		},
	}
	repo := profiles.NewMemoryRepo()
	if err := repo.PutProfile(context.Background(), profile); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return &TemplateGenerator{Profiles: repo, Now: fixedNow}, profile
}

func testJob() match.JobPosting {
	return match.JobPosting{
		ID:             "job-1",
		Title:          "Platform Engineer",
		Company:        "Globex",
		RequiredSkills: []string{"Go", "Kubernetes"},
	}
}

func TestGenerateResumeSurfacesRequiredSkillsFirst(t *testing.T) {
	gen, _ := seedProfile(t)

	doc, err := gen.GenerateResume(context.Background(), "user-1", testJob())
	if err != nil {
		t.Fatalf("GenerateResume: %v", err)
	}
	if doc.Kind != workflow.DocResume {
		t.Fatalf("expected kind %q, got %q", workflow.DocResume, doc.Kind)
	}
	if !doc.GeneratedAt.Equal(fixedNow()) {
		t.Fatalf("expected fixed timestamp, got %s", doc.GeneratedAt)
	}

	keyIdx := strings.Index(doc.Text, "Key skills for this role:")
	addIdx := strings.Index(doc.Text, "Additional skills:")
	if keyIdx < 0 || addIdx < 0 || keyIdx > addIdx {
		t.Fatalf("expected key skills before additional skills:\n%s", doc.Text)
	}
	for _, want := range []string{"Go (4 years)", "Kubernetes", "Mentoring", "Backend Engineer, Initech", "Cut p99 latency in half", "homelab"} {
		if !strings.Contains(doc.Text, want) {
			t.Fatalf("expected resume to contain %q:\n%s", want, doc.Text)
		}
	}
}

func TestGenerateResumeDeterministic(t *testing.T) {
	gen, _ := seedProfile(t)

	doc1, err := gen.GenerateResume(context.Background(), "user-1", testJob())
	if err != nil {
		t.Fatalf("GenerateResume: %v", err)
	}
	doc2, err := gen.GenerateResume(context.Background(), "user-1", testJob())
	if err != nil {
		t.Fatalf("GenerateResume again: %v", err)
	}
	if doc1.Text != doc2.Text {
		t.Fatalf("expected identical output for identical input")
	}
}

func TestGenerateCoverLetterMentionsRoleAndSkills(t *testing.T) {
	gen, _ := seedProfile(t)

	doc, err := gen.GenerateCoverLetter(context.Background(), "user-1", testJob())
	if err != nil {
		t.Fatalf("GenerateCoverLetter: %v", err)
	}
	if doc.Kind != workflow.DocCoverLetter {
		t.Fatalf("expected kind %q, got %q", workflow.DocCoverLetter, doc.Kind)
	}
	for _, want := range []string{"Globex", "Platform Engineer", "Go and Kubernetes", "6 years"} {
		if !strings.Contains(doc.Text, want) {
			t.Fatalf("expected cover letter to contain %q:\n%s", want, doc.Text)
		}
	}
}

func TestGenerateResumeMissingProfile(t *testing.T) {
	gen := &TemplateGenerator{Profiles: profiles.NewMemoryRepo(), Now: fixedNow}

	_, err := gen.GenerateResume(context.Background(), "nobody", testJob())
	if !errors.Is(err, ErrProfileUnavailable) {
		t.Fatalf("expected ErrProfileUnavailable, got %v", err)
	}
}

func TestRefineAppendsRevisions(t *testing.T) {
	gen, _ := seedProfile(t)

	doc := workflow.Document{Kind: workflow.DocResume, Text: "original body"}
	refined, err := gen.Refine(context.Background(), doc, []string{"Emphasize leadership", "Add metrics"})
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if !strings.HasPrefix(refined.Text, "original body") {
		t.Fatalf("expected original text preserved:\n%s", refined.Text)
	}
	for _, want := range []string{"Revisions:", "Emphasize leadership", "Add metrics"} {
		if !strings.Contains(refined.Text, want) {
			t.Fatalf("expected refined text to contain %q", want)
		}
	}
}

func TestRefineNoChangesIsIdentity(t *testing.T) {
	gen, _ := seedProfile(t)

	doc := workflow.Document{Kind: workflow.DocResume, Text: "original body", GeneratedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	refined, err := gen.Refine(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if refined != doc {
		t.Fatalf("expected unchanged document")
	}
}
