// Package visibility decides whether a viewer may see a profile.
//
// Evaluation is an explicit, short-circuiting sequence of named steps (see
// Step). CanView runs it for one profile, reading the store lazily.
// EvaluateBatch runs it for many profiles against preloaded data, issuing a
// fixed number of store reads regardless of how many profiles are asked for.
//
// Read failures never surface as errors from CanView: the decision fails
// closed with ReasonRulesError or ReasonStoreUnavailable.
package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"personas/internal/audit"
	"personas/internal/profile/metrics"
	"personas/internal/profile/models"
	id "personas/pkg/domain"
	"personas/pkg/requestcontext"
)

var tracer = otel.Tracer("personas/internal/profile/visibility")

const (
	pathSingle = "single"
	pathBatch  = "batch"
)

// Store is the read side visibility evaluation needs.
type Store interface {
	GetProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	IsBlocked(ctx context.Context, profileID id.ProfileID, viewerID id.UserID) (bool, error)
	GetAllowlistEntries(ctx context.Context, profileID id.ProfileID) ([]models.AllowlistEntry, error)
	GetEnabledRules(ctx context.Context, profileID id.ProfileID) ([]models.VisibilityRule, error)
	GetViewerFilters(ctx context.Context, profileID id.ProfileID) ([]models.ViewerFilter, error)

	GetProfilesByIDs(ctx context.Context, profileIDs []id.ProfileID) ([]*models.Profile, error)
	GetBlockedProfileIDs(ctx context.Context, profileIDs []id.ProfileID, viewerID id.UserID) (models.ProfileIDSet, error)
	GetAllowlistEntriesForViewer(ctx context.Context, profileIDs []id.ProfileID, viewerID id.UserID) ([]models.AllowlistEntry, error)
	GetAllowlistEntriesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) ([]models.AllowlistEntry, error)
	GetEnabledRulesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) (map[id.ProfileID][]models.VisibilityRule, error)
}

// Evaluator answers visibility questions. It holds no mutable state.
type Evaluator struct {
	store       Store
	logger      *slog.Logger
	metrics     *metrics.Metrics
	auditor     audit.Emitter
	concurrency int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// WithAuditPublisher sets where single-path decisions are published.
func WithAuditPublisher(p audit.Emitter) Option {
	return func(e *Evaluator) { e.auditor = p }
}

// WithConcurrency bounds the per-profile fan-out of batch evaluation.
// Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an Evaluator.
func New(store Store, opts ...Option) (*Evaluator, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	e := &Evaluator{store: store, concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CanView decides whether viewerID, presenting viewer, may see profileID.
func (e *Evaluator) CanView(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileID id.ProfileID) Decision {
	ctx, span := tracer.Start(ctx, "visibility.CanView")
	defer span.End()
	start := time.Now()

	ev := &evaluation{
		viewerID: viewerID,
		viewer:   viewer,
		now:      requestcontext.Now(ctx),
		facts:    &storeFacts{store: e.store, metrics: e.metrics, profileID: profileID, viewerID: viewerID},
	}
	d := singleSequence.evaluate(ctx, ev)

	e.metrics.ObserveEvaluateLatency(pathSingle, time.Since(start))
	e.metrics.IncrementDecision(pathSingle, string(d.Reason))
	span.SetAttributes(
		attribute.String("profile_id", profileID.String()),
		attribute.Bool("allowed", d.Allowed),
		attribute.String("reason", string(d.Reason)),
		attribute.String("step", d.Step.String()),
	)

	if ev.err != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "visibility failed closed",
			"profile_id", profileID.String(),
			"viewer_id", viewerID.String(),
			"reason", string(d.Reason),
			"step", d.Step.String(),
			"error", ev.err,
		)
	}

	audit.LogAudit(ctx, e.logger, e.auditor, audit.Event{
		Action:    audit.ActionVisibilityDecision,
		ActorID:   viewerID.String(),
		ProfileID: profileID.String(),
		Decision:  decisionLabel(d),
		Reason:    string(d.Reason),
		Step:      d.Step.String(),
	})
	return d
}

func decisionLabel(d Decision) string {
	if d.Allowed {
		return audit.DecisionAllow
	}
	return audit.DecisionDeny
}

// storeFacts reads each fact from the store when a step first asks for it.
type storeFacts struct {
	store     Store
	metrics   *metrics.Metrics
	profileID id.ProfileID
	viewerID  id.UserID
}

func (f *storeFacts) profile(ctx context.Context) (*models.Profile, error) {
	defer f.observe("profile", time.Now())
	return f.store.GetProfile(ctx, f.profileID)
}

func (f *storeFacts) blocked(ctx context.Context) (bool, error) {
	defer f.observe("blocklist", time.Now())
	return f.store.IsBlocked(ctx, f.profileID, f.viewerID)
}

func (f *storeFacts) allowlist(ctx context.Context) (bool, bool, error) {
	defer f.observe("allowlist", time.Now())
	entries, err := f.store.GetAllowlistEntries(ctx, f.profileID)
	if err != nil {
		return false, false, err
	}
	for _, entry := range entries {
		if entry.ViewerUserID == f.viewerID {
			return true, true, nil
		}
	}
	return len(entries) > 0, false, nil
}

func (f *storeFacts) rules(ctx context.Context) ([]models.VisibilityRule, error) {
	defer f.observe("rules", time.Now())
	return f.store.GetEnabledRules(ctx, f.profileID)
}

func (f *storeFacts) viewerFilters(ctx context.Context) ([]models.ViewerFilter, error) {
	defer f.observe("viewer_filters", time.Now())
	return f.store.GetViewerFilters(ctx, f.profileID)
}

func (f *storeFacts) observe(read string, start time.Time) {
	f.metrics.ObserveStoreRead(read, time.Since(start))
}
