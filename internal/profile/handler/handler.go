// Package handler exposes profile reads, visibility checks and owner
// mutations over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"personas/internal/profile/models"
	"personas/internal/profile/quota"
	"personas/internal/profile/validation"
	"personas/internal/profile/visibility"
	id "personas/pkg/domain"
	dErrors "personas/pkg/domain-errors"
	"personas/pkg/platform/httputil"
	"personas/pkg/requestcontext"
)

// Service is the profile facade the handler drives.
type Service interface {
	ResolveEffectiveProfile(ctx context.Context, profileID id.ProfileID) (*models.EffectiveProfile, error)
	CanViewerSeeProfile(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileID id.ProfileID) visibility.Decision
	BatchCheckVisibility(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileIDs []id.ProfileID) (map[id.ProfileID]bool, error)
	ValidateProfileData(ctx context.Context, data models.ProfileData, isCreate bool) validation.Result
	GetMaxSecondaryProfilesForTier(tier string) int
	DiscoveryGrid(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileIDs []id.ProfileID) ([]*models.EffectiveProfile, error)
	ViewerAttributes(ctx context.Context, viewerID id.UserID) (models.ViewerAttributes, error)

	ListProfiles(ctx context.Context, accountID id.UserID) ([]*models.Profile, error)
	CreateSecondaryProfile(ctx context.Context, accountID id.UserID, data models.ProfileData) (*models.Profile, error)
	UpdateProfile(ctx context.Context, actorID id.UserID, profileID id.ProfileID, expectedVersion int, data models.ProfileData) (*models.Profile, error)
	DeleteProfile(ctx context.Context, actorID id.UserID, profileID id.ProfileID) error
	UpsertOverrides(ctx context.Context, actorID id.UserID, profileID id.ProfileID, data models.OverridesData) (*models.ProfileOverrides, error)
}

// Handler serves the profile routes.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the profile routes. The caller installs the middleware
// that puts the viewer id in the request context.
func (h *Handler) Register(r chi.Router) {
	r.Get("/profiles/{id}", h.HandleGetProfile)
	r.Get("/profiles/{id}/visibility", h.HandleVisibility)
	r.Post("/profiles/visibility", h.HandleBatchVisibility)
	r.Post("/discovery", h.HandleDiscovery)
	r.Get("/quota/{tier}", h.HandleQuota)

	r.Route("/me/profiles", func(r chi.Router) {
		r.Get("/", h.HandleListProfiles)
		r.Post("/", h.HandleCreateProfile)
		r.Post("/validate", h.HandleValidateProfile)
		r.Patch("/{id}", h.HandleUpdateProfile)
		r.Delete("/{id}", h.HandleDeleteProfile)
		r.Put("/{id}/overrides", h.HandleUpsertOverrides)
	})
}

// HandleGetProfile returns the effective profile when the viewer may see it.
// A denied profile is indistinguishable from a missing one.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, profileID, ok := h.viewerAndProfile(w, r)
	if !ok {
		return
	}
	attrs, ok := h.viewerAttributes(w, ctx, viewerID)
	if !ok {
		return
	}

	if d := h.service.CanViewerSeeProfile(ctx, viewerID, attrs, profileID); !d.Allowed {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "profile not found"))
		return
	}
	ep, err := h.service.ResolveEffectiveProfile(ctx, profileID)
	if err != nil {
		h.fail(w, ctx, "resolve effective profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ep)
}

// HandleVisibility returns the decision with its reason and step.
func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, profileID, ok := h.viewerAndProfile(w, r)
	if !ok {
		return
	}
	attrs, ok := h.viewerAttributes(w, ctx, viewerID)
	if !ok {
		return
	}

	d := h.service.CanViewerSeeProfile(ctx, viewerID, attrs, profileID)
	httputil.WriteJSON(w, http.StatusOK, VisibilityResponse{
		ProfileID: profileID.String(),
		Allowed:   d.Allowed,
		Reason:    d.Reason,
		Step:      d.Step,
	})
}

func (h *Handler) HandleBatchVisibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, ok := h.requireViewer(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProfileIDsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	attrs, ok := h.viewerAttributes(w, ctx, viewerID)
	if !ok {
		return
	}

	results, err := h.service.BatchCheckVisibility(ctx, viewerID, attrs, req.parsed)
	if err != nil {
		h.fail(w, ctx, "batch visibility", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(results))
}

func (h *Handler) HandleDiscovery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, ok := h.requireViewer(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProfileIDsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	attrs, ok := h.viewerAttributes(w, ctx, viewerID)
	if !ok {
		return
	}

	profiles, err := h.service.DiscoveryGrid(ctx, viewerID, attrs, req.parsed)
	if err != nil {
		h.fail(w, ctx, "discovery grid", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DiscoveryResponse{Profiles: profiles})
}

func (h *Handler) HandleQuota(w http.ResponseWriter, r *http.Request) {
	tier := chi.URLParam(r, "tier")
	httputil.WriteJSON(w, http.StatusOK, QuotaResponse{
		Tier:         quota.Normalize(tier),
		MaxSecondary: h.service.GetMaxSecondaryProfilesForTier(tier),
	})
}

func (h *Handler) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, ok := h.requireViewer(w, ctx)
	if !ok {
		return
	}
	profiles, err := h.service.ListProfiles(ctx, viewerID)
	if err != nil {
		h.fail(w, ctx, "list profiles", err)
		return
	}
	if profiles == nil {
		profiles = []*models.Profile{}
	}
	httputil.WriteJSON(w, http.StatusOK, ProfilesResponse{Profiles: profiles})
}

func (h *Handler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, ok := h.requireViewer(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	profile, err := h.service.CreateSecondaryProfile(ctx, viewerID, req.ProfileData)
	if err != nil {
		h.fail(w, ctx, "create profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, profile)
}

// HandleValidateProfile checks a payload without saving it.
func (h *Handler) HandleValidateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireViewer(w, ctx); !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ValidateProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.ValidateProfileData(ctx, req.Data, req.IsCreate))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, profileID, ok := h.viewerAndProfile(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	profile, err := h.service.UpdateProfile(ctx, viewerID, profileID, *req.Version, req.ProfileData)
	if err != nil {
		h.fail(w, ctx, "update profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, profileID, ok := h.viewerAndProfile(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProfile(ctx, viewerID, profileID); err != nil {
		h.fail(w, ctx, "delete profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleUpsertOverrides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, profileID, ok := h.viewerAndProfile(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[OverridesRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	overrides, err := h.service.UpsertOverrides(ctx, viewerID, profileID, req.OverridesData)
	if err != nil {
		h.fail(w, ctx, "upsert overrides", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overrides)
}

func (h *Handler) requireViewer(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	viewerID := requestcontext.ViewerID(ctx)
	if viewerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return viewerID, true
}

func (h *Handler) viewerAndProfile(w http.ResponseWriter, r *http.Request) (id.UserID, id.ProfileID, bool) {
	viewerID, ok := h.requireViewer(w, r.Context())
	if !ok {
		return id.UserID{}, id.ProfileID{}, false
	}
	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid profile id"))
		return id.UserID{}, id.ProfileID{}, false
	}
	return viewerID, profileID, true
}

func (h *Handler) viewerAttributes(w http.ResponseWriter, ctx context.Context, viewerID id.UserID) (models.ViewerAttributes, bool) {
	attrs, err := h.service.ViewerAttributes(ctx, viewerID)
	if err != nil {
		h.fail(w, ctx, "load viewer attributes", err)
		return models.ViewerAttributes{}, false
	}
	return attrs, true
}

// fail logs at ERROR only for internal failures; client errors are WARN.
func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, op string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"viewer_id", requestcontext.ViewerID(ctx).String(),
		"error", err,
	)
	httputil.WriteError(w, err)
}
