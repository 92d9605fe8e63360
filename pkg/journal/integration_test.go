//go:build integration

package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/StricklySoft/stricklysoft-sentry/internal/testutil"
	"github.com/StricklySoft/stricklysoft-sentry/internal/testutil/containers"
	"github.com/StricklySoft/stricklysoft-sentry/internal/testutil/fixtures"
	"github.com/StricklySoft/stricklysoft-sentry/pkg/clients/redis"
	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
	"github.com/StricklySoft/stricklysoft-sentry/pkg/journal"
	"github.com/StricklySoft/stricklysoft-sentry/pkg/reporting"
)

type JournalIntegrationSuite struct {
	suite.Suite

	ctx         context.Context
	redisResult *containers.RedisResult
	rdb         *redis.Client
}

func (s *JournalIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	result, err := containers.StartRedis(s.ctx)
	require.NoError(s.T(), err, "failed to start Redis container")
	s.redisResult = result

	rdb, err := redis.NewClient(s.ctx, redis.Config{URI: result.ConnString})
	require.NoError(s.T(), err)
	s.rdb = rdb
}

func (s *JournalIntegrationSuite) TearDownSuite() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.redisResult != nil {
		if err := s.redisResult.Container.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate redis container: %v", err)
		}
	}
}

func TestJournalIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(JournalIntegrationSuite))
}

func (s *JournalIntegrationSuite) newJournal(prefix string, ttl time.Duration) *journal.Journal {
	j, err := journal.New(&testutil.RecordingTransport{}, s.rdb, journal.Config{KeyPrefix: prefix, TTL: ttl})
	require.NoError(s.T(), err)
	return j
}

func (s *JournalIntegrationSuite) TestSendThenLookup() {
	j := s.newJournal(fixtures.JournalPrefix+":roundtrip", time.Minute)

	client, err := reporting.NewClient(j)
	require.NoError(s.T(), err)

	ctx := reporting.ContextWithScope(s.ctx, reporting.NewScope())
	client.HTTPContext(ctx, map[string]any{
		"url":    "http://example.com/widgets/42",
		"method": "GET",
		"route":  fixtures.WidgetRoute,
	})
	id := client.CaptureException(ctx, errors.New("boom"), reporting.WithLevel(reporting.SeverityFatal))
	require.Equal(s.T(), fixtures.EventID, id)

	entry, err := j.Lookup(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), reporting.SeverityFatal, entry.Level)
	assert.Equal(s.T(), "boom", entry.Error)
	assert.Equal(s.T(), fixtures.WidgetRoute, entry.Route)
	assert.Equal(s.T(), "GET", entry.Method)
	assert.False(s.T(), entry.Timestamp.IsZero())
}

func (s *JournalIntegrationSuite) TestLookupUnknownID() {
	j := s.newJournal(fixtures.JournalPrefix+":unknown", time.Minute)

	_, err := j.Lookup(s.ctx, "does-not-exist")
	testutil.RequireErrorCode(s.T(), err, sserr.CodeNotFound)
}

func (s *JournalIntegrationSuite) TestEntryExpires() {
	j := s.newJournal(fixtures.JournalPrefix+":expiry", time.Second)

	id, err := j.Send(s.ctx, &reporting.Event{Level: reporting.SeverityInfo, Message: "short lived"})
	require.NoError(s.T(), err)

	_, err = j.Lookup(s.ctx, id)
	require.NoError(s.T(), err)

	require.Eventually(s.T(), func() bool {
		_, err := j.Lookup(s.ctx, id)
		return sserr.IsNotFound(err)
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *JournalIntegrationSuite) TestForget() {
	j := s.newJournal(fixtures.JournalPrefix+":forget", time.Minute)

	id, err := j.Send(s.ctx, &reporting.Event{Level: reporting.SeverityWarning, Message: "forget me"})
	require.NoError(s.T(), err)
	require.NoError(s.T(), j.Forget(s.ctx, id))

	_, err = j.Lookup(s.ctx, id)
	assert.True(s.T(), sserr.IsNotFound(err))
}
