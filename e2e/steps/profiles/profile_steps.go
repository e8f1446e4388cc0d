package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	"personas/internal/audit"
	"personas/internal/profile/models"
	"personas/internal/profile/service"
	"personas/internal/profile/store"
	id "personas/pkg/domain"
	"personas/pkg/requestcontext"
)

// TestContext is what the profile steps need from the scenario world.
type TestContext interface {
	Account(name string) id.UserID
	SetProfile(name string, p *models.Profile)
	Profile(name string) (*models.Profile, error)
	Do(ctx context.Context, method, path, as string, body any) error
	Status() int
	Body() []byte
	Field(name string) (any, error)
}

// Seeder is the direct store access for fixtures the API does not expose.
type Seeder struct {
	Store   *store.InMemoryStore
	Service *service.Service
	Audit   *audit.InMemoryStore
}

// RegisterSteps registers profile and visibility step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext, seed Seeder) {
	s := &profileSteps{tc: tc, seed: seed}

	// Fixtures
	ctx.Step(`^an account "([^"]*)" with base record:$`, s.accountWithBaseRecord)
	ctx.Step(`^"([^"]*)" has a main profile "([^"]*)"$`, s.mainProfile)
	ctx.Step(`^profile "([^"]*)" has a public rule$`, s.publicRule)
	ctx.Step(`^profile "([^"]*)" blocks "([^"]*)"$`, s.blocks)

	// Owner actions
	ctx.Step(`^"([^"]*)" creates a secondary profile "([^"]*)" with:$`, s.createSecondary)
	ctx.Step(`^"([^"]*)" sets overrides on "([^"]*)":$`, s.setOverrides)
	ctx.Step(`^"([^"]*)" deactivates "([^"]*)"$`, s.deactivate)
	ctx.Step(`^"([^"]*)" validates profile data for update:$`, s.validateForUpdate)

	// Viewer actions
	ctx.Step(`^"([^"]*)" views profile "([^"]*)"$`, s.viewProfile)
	ctx.Step(`^"([^"]*)" checks visibility of "([^"]*)"$`, s.checkVisibility)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, s.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.fieldShouldBe)
	ctx.Step(`^the response should mention "([^"]*)"$`, s.responseShouldMention)
	ctx.Step(`^an? "([^"]*)" decision with reason "([^"]*)" is audited for "([^"]*)"$`, s.decisionAudited)
}

type profileSteps struct {
	tc   TestContext
	seed Seeder
}

func (s *profileSteps) accountWithBaseRecord(ctx context.Context, name string, doc *godog.DocString) error {
	var rec models.BaseRecord
	if err := json.Unmarshal([]byte(doc.Content), &rec); err != nil {
		return fmt.Errorf("base record: %w", err)
	}
	rec.AccountID = s.tc.Account(name)
	return s.seed.Store.PutBaseRecord(ctx, &rec)
}

func (s *profileSteps) mainProfile(ctx context.Context, account, profile string) error {
	p, err := s.seed.Service.EnsureMainProfile(ctx, s.tc.Account(account))
	if err != nil {
		return err
	}
	s.tc.SetProfile(profile, p)
	return nil
}

func (s *profileSteps) publicRule(ctx context.Context, profile string) error {
	p, err := s.tc.Profile(profile)
	if err != nil {
		return err
	}
	return s.seed.Store.PutRule(ctx, models.VisibilityRule{
		ID: profile + "-public", ProfileID: p.ID, Type: models.RulePublic, Enabled: true,
	})
}

func (s *profileSteps) blocks(ctx context.Context, profile, viewer string) error {
	p, err := s.tc.Profile(profile)
	if err != nil {
		return err
	}
	return s.seed.Store.AddBlocklistEntry(ctx, models.BlocklistEntry{
		ProfileID: p.ID, ViewerUserID: s.tc.Account(viewer), CreatedAt: requestcontext.Now(ctx),
	})
}

func (s *profileSteps) createSecondary(ctx context.Context, account, profile string, doc *godog.DocString) error {
	if err := s.tc.Do(ctx, http.MethodPost, "/me/profiles", account, json.RawMessage(doc.Content)); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusCreated {
		return fmt.Errorf("create %q: status %d: %s", profile, s.tc.Status(), s.tc.Body())
	}
	var p models.Profile
	if err := json.Unmarshal(s.tc.Body(), &p); err != nil {
		return err
	}
	s.tc.SetProfile(profile, &p)
	return nil
}

func (s *profileSteps) setOverrides(ctx context.Context, account, profile string, doc *godog.DocString) error {
	p, err := s.tc.Profile(profile)
	if err != nil {
		return err
	}
	if err := s.tc.Do(ctx, http.MethodPut, "/me/profiles/"+p.ID.String()+"/overrides", account, json.RawMessage(doc.Content)); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusOK {
		return fmt.Errorf("overrides on %q: status %d: %s", profile, s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *profileSteps) deactivate(ctx context.Context, account, profile string) error {
	p, err := s.tc.Profile(profile)
	if err != nil {
		return err
	}
	body := map[string]any{"version": p.Version, "active": false}
	if err := s.tc.Do(ctx, http.MethodPatch, "/me/profiles/"+p.ID.String(), account, body); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusOK {
		return fmt.Errorf("deactivate %q: status %d: %s", profile, s.tc.Status(), s.tc.Body())
	}
	var updated models.Profile
	if err := json.Unmarshal(s.tc.Body(), &updated); err != nil {
		return err
	}
	s.tc.SetProfile(profile, &updated)
	return nil
}

func (s *profileSteps) validateForUpdate(ctx context.Context, account string, doc *godog.DocString) error {
	body := map[string]any{"is_create": false, "data": json.RawMessage(doc.Content)}
	return s.tc.Do(ctx, http.MethodPost, "/me/profiles/validate", account, body)
}

func (s *profileSteps) viewProfile(ctx context.Context, viewer, profile string) error {
	p, err := s.tc.Profile(profile)
	if err != nil {
		return err
	}
	return s.tc.Do(ctx, http.MethodGet, "/profiles/"+p.ID.String(), viewer, nil)
}

func (s *profileSteps) checkVisibility(ctx context.Context, viewer, profile string) error {
	p, err := s.tc.Profile(profile)
	if err != nil {
		return err
	}
	return s.tc.Do(ctx, http.MethodGet, "/profiles/"+p.ID.String()+"/visibility", viewer, nil)
}

func (s *profileSteps) statusShouldBe(_ context.Context, status int) error {
	if s.tc.Status() != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *profileSteps) fieldShouldBe(_ context.Context, field, expected string) error {
	v, err := s.tc.Field(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("field %q: expected %q, got %q", field, expected, got)
	}
	return nil
}

func (s *profileSteps) responseShouldMention(_ context.Context, text string) error {
	if !strings.Contains(string(s.tc.Body()), text) {
		return fmt.Errorf("response does not mention %q: %s", text, s.tc.Body())
	}
	return nil
}

func (s *profileSteps) decisionAudited(ctx context.Context, decision, reason, profile string) error {
	p, err := s.tc.Profile(profile)
	if err != nil {
		return err
	}
	events, err := s.seed.Audit.ListByProfile(ctx, p.ID.String())
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.Action == audit.ActionVisibilityDecision && e.Decision == decision && e.Reason == reason {
			return nil
		}
	}
	return fmt.Errorf("no %s decision with reason %q audited for %s (%d events)", decision, reason, profile, len(events))
}
