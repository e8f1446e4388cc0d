package visibility

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"personas/internal/profile/models"
	id "personas/pkg/domain"
	dErrors "personas/pkg/domain-errors"
	"personas/pkg/requestcontext"
)

// preload holds everything batch evaluation reads, gathered up front.
type preload struct {
	profiles []*models.Profile
	blocked  models.ProfileIDSet
	listed   models.ProfileIDSet
	gated    models.ProfileIDSet
	rules    map[id.ProfileID][]models.VisibilityRule
	// rulesErr fails closed only the profiles that reach the rules step.
	rulesErr error
}

// CanViewBatch reports, for each non-deleted profile among profileIDs, whether
// viewerID may see it. Ids that match no live profile have no entry.
func (e *Evaluator) CanViewBatch(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileIDs []id.ProfileID) (map[id.ProfileID]bool, error) {
	decisions, err := e.EvaluateBatch(ctx, viewerID, viewer, profileIDs)
	out := make(map[id.ProfileID]bool, len(decisions))
	for pid, d := range decisions {
		out[pid] = d.Allowed
	}
	return out, err
}

// EvaluateBatch is CanViewBatch with the full decision per profile.
//
// The five reads (profiles, blocklist for the viewer, allowlist for the
// viewer, allowlist presence, enabled rules) run concurrently. If any of the
// first four fails the result is empty and the error is CodeUnavailable. A
// rules read failure is not fatal: profiles that reach the rules step are
// denied with ReasonRulesError, as on the single path.
func (e *Evaluator) EvaluateBatch(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileIDs []id.ProfileID) (map[id.ProfileID]Decision, error) {
	ctx, span := tracer.Start(ctx, "visibility.EvaluateBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("profile_count", len(profileIDs)))
	start := time.Now()

	out := make(map[id.ProfileID]Decision, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}

	data, err := e.preload(ctx, viewerID, profileIDs)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if e.logger != nil {
			e.logger.WarnContext(ctx, "batch visibility preload failed",
				"viewer_id", viewerID.String(),
				"profile_count", len(profileIDs),
				"error", err,
			)
		}
		return out, dErrors.Wrap(err, dErrors.CodeUnavailable, "visibility data unavailable")
	}
	if data.rulesErr != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "batch rules preload failed, failing closed",
			"viewer_id", viewerID.String(),
			"error", data.rulesErr,
		)
	}

	now := requestcontext.Now(ctx)
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, p := range data.profiles {
		g.Go(func() error {
			ev := &evaluation{
				viewerID: viewerID,
				viewer:   viewer,
				now:      now,
				facts:    &preloadedFacts{data: data, p: p, viewerID: viewerID},
			}
			d := batchSequence.evaluate(ctx, ev)
			mu.Lock()
			out[p.ID] = d
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, d := range out {
		e.metrics.IncrementDecision(pathBatch, string(d.Reason))
	}
	e.metrics.ObserveEvaluateLatency(pathBatch, time.Since(start))
	return out, nil
}

func (e *Evaluator) preload(ctx context.Context, viewerID id.UserID, profileIDs []id.ProfileID) (*preload, error) {
	g, gctx := errgroup.WithContext(ctx)
	data := &preload{}
	var listed, all []models.AllowlistEntry

	g.Go(func() error {
		defer e.observe("profiles_batch", time.Now())
		profiles, err := e.store.GetProfilesByIDs(gctx, profileIDs)
		data.profiles = profiles
		return err
	})
	g.Go(func() error {
		defer e.observe("blocklist_batch", time.Now())
		blocked, err := e.store.GetBlockedProfileIDs(gctx, profileIDs, viewerID)
		data.blocked = blocked
		return err
	})
	g.Go(func() error {
		defer e.observe("allowlist_viewer_batch", time.Now())
		entries, err := e.store.GetAllowlistEntriesForViewer(gctx, profileIDs, viewerID)
		listed = entries
		return err
	})
	g.Go(func() error {
		defer e.observe("allowlist_batch", time.Now())
		entries, err := e.store.GetAllowlistEntriesByProfileIDs(gctx, profileIDs)
		all = entries
		return err
	})
	g.Go(func() error {
		defer e.observe("rules_batch", time.Now())
		rules, err := e.store.GetEnabledRulesByProfileIDs(gctx, profileIDs)
		data.rules, data.rulesErr = rules, err
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	data.listed = models.NewProfileIDSet()
	for _, entry := range listed {
		if entry.ViewerUserID == viewerID {
			data.listed.Add(entry.ProfileID)
		}
	}
	data.gated = models.NewProfileIDSet()
	for _, entry := range all {
		data.gated.Add(entry.ProfileID)
	}
	return data, nil
}

func (e *Evaluator) observe(read string, start time.Time) {
	e.metrics.ObserveStoreRead(read, time.Since(start))
}

// preloadedFacts serves one profile's facts from a preload.
type preloadedFacts struct {
	data     *preload
	p        *models.Profile
	viewerID id.UserID
}

func (f *preloadedFacts) profile(context.Context) (*models.Profile, error) {
	return f.p, nil
}

func (f *preloadedFacts) blocked(context.Context) (bool, error) {
	return f.data.blocked.Has(f.p.ID), nil
}

func (f *preloadedFacts) allowlist(context.Context) (bool, bool, error) {
	return f.data.gated.Has(f.p.ID), f.data.listed.Has(f.p.ID), nil
}

func (f *preloadedFacts) rules(context.Context) ([]models.VisibilityRule, error) {
	if f.data.rulesErr != nil {
		return nil, f.data.rulesErr
	}
	return f.data.rules[f.p.ID], nil
}

// viewerFilters is never asked for by batchSequence.
func (f *preloadedFacts) viewerFilters(context.Context) ([]models.ViewerFilter, error) {
	return nil, nil
}
