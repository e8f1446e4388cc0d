// Package e2e drives the HTTP API end to end with godog scenarios. The
// server runs in process over an in-memory store and signs real tokens.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"

	"personas/internal/audit"
	jwttoken "personas/internal/jwt_token"
	"personas/internal/profile/cache"
	"personas/internal/profile/handler"
	"personas/internal/profile/models"
	"personas/internal/profile/resolver"
	"personas/internal/profile/service"
	"personas/internal/profile/store"
	"personas/internal/profile/visibility"
	id "personas/pkg/domain"
	"personas/pkg/platform/middleware/auth"
	"personas/pkg/platform/middleware/request"
	"personas/pkg/platform/middleware/requesttime"
)

// World is the per-scenario state shared by all steps.
type World struct {
	Store    *store.InMemoryStore
	Service  *service.Service
	Audit    *audit.InMemoryStore
	tokens   *jwttoken.Service
	server   *httptest.Server
	accounts map[string]id.UserID
	profiles map[string]*models.Profile

	status int
	body   []byte
}

// NewWorld starts a fresh server.
func NewWorld() (*World, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := store.NewInMemory()
	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore)

	eval, err := visibility.New(records, visibility.WithAuditPublisher(publisher))
	if err != nil {
		return nil, err
	}
	base, err := resolver.New(records)
	if err != nil {
		return nil, err
	}
	cached, err := cache.NewCachedResolver(base, cache.NewMemory[id.ProfileID, *models.EffectiveProfile]())
	if err != nil {
		return nil, err
	}
	svc, err := service.New(records, cached, eval, service.WithAuditPublisher(publisher))
	if err != nil {
		return nil, err
	}

	w := &World{
		Store:    records,
		Service:  svc,
		Audit:    auditStore,
		tokens:   jwttoken.NewService("e2e-signing-key", "personas", "personas-api"),
		accounts: map[string]id.UserID{},
		profiles: map[string]*models.Profile{},
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(auth.RequireViewer(w.tokens, logger))
	r.Use(resolver.Middleware(records))
	handler.New(svc, logger).Register(r)
	w.server = httptest.NewServer(r)
	return w, nil
}

func (w *World) Close() {
	if w.server != nil {
		w.server.Close()
	}
}

// Account returns the id registered under name, creating one on first use.
func (w *World) Account(name string) id.UserID {
	if uid, ok := w.accounts[name]; ok {
		return uid
	}
	uid := id.NewUserID()
	w.accounts[name] = uid
	return uid
}

func (w *World) SetProfile(name string, p *models.Profile) { w.profiles[name] = p }

func (w *World) Profile(name string) (*models.Profile, error) {
	p, ok := w.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	return p, nil
}

// Do sends a request as the named account. An empty name is anonymous.
func (w *World) Do(ctx context.Context, method, path, as string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, w.server.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		token, err := w.tokens.Issue(w.Account(as), time.Now(), time.Hour)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := w.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	w.status = resp.StatusCode
	w.body, err = io.ReadAll(resp.Body)
	return err
}

func (w *World) Status() int { return w.status }
func (w *World) Body() []byte { return w.body }

// Field decodes the last response and returns the top-level field.
func (w *World) Field(name string) (any, error) {
	var out map[string]any
	if err := json.Unmarshal(w.body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w: %s", err, w.body)
	}
	v, ok := out[name]
	if !ok {
		return nil, fmt.Errorf("field %q missing from %s", name, w.body)
	}
	return v, nil
}
