//go:build integration

package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personas/internal/profile/cache"
	"personas/internal/profile/models"
	id "personas/pkg/domain"
	"personas/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.Redis[id.ProfileID, *models.EffectiveProfile]
	ctx   context.Context
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis[id.ProfileID, *models.EffectiveProfile](s.redis.Client, "test:ep:")
}

func (s *RedisCacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	lat, label := 51.5, "London"
	pid := id.NewProfileID()
	ep := &models.EffectiveProfile{
		Fields:                 map[string]any{"bio": "hi", "photos": []any{"p1", "p2"}},
		EffectiveLat:           &lat,
		EffectiveLocationLabel: &label,
		ProfileID:              pid,
		ProfileKind:            models.KindSecondary,
		ProfileTypeKey:         "weekend",
		ProfileActive:          true,
	}

	s.Run("miss before set", func() {
		_, ok, err := s.cache.Get(s.ctx, pid)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("cached value renders identically", func() {
		s.Require().NoError(s.cache.Set(s.ctx, pid, ep, time.Minute))
		got, ok, err := s.cache.Get(s.ctx, pid)
		s.Require().NoError(err)
		s.Require().True(ok)

		want, err := json.Marshal(ep)
		s.Require().NoError(err)
		have, err := json.Marshal(got)
		s.Require().NoError(err)
		s.JSONEq(string(want), string(have))
		s.Equal([]string{"p1", "p2"}, got.Photos())
	})

	s.Run("ttl is applied", func() {
		ttl, err := s.redis.Client.TTL(s.ctx, "test:ep:"+pid.String()).Result()
		s.Require().NoError(err)
		s.Greater(ttl, time.Duration(0))
		s.LessOrEqual(ttl, time.Minute)
	})

	s.Run("delete", func() {
		s.Require().NoError(s.cache.Delete(s.ctx, pid))
		_, ok, err := s.cache.Get(s.ctx, pid)
		s.Require().NoError(err)
		s.False(ok)
	})
}
