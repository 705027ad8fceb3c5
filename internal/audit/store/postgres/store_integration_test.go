//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"portaria/internal/audit"
	"portaria/internal/audit/store/postgres"
	"portaria/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.pg.DB)
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "audit_entries"))
}

func (s *AuditStoreSuite) TestAppendAndListNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	entries := []audit.Entry{
		{
			ID:        uuid.New(),
			Action:    audit.ActionVisitorRegistered,
			Details:   "Visitante Maria Souza registrado na Sala Rubi",
			Actor:     &audit.Actor{ID: "op-1", Name: "Carlos"},
			Level:     audit.LevelInfo,
			Timestamp: base.Add(-2 * time.Minute),
		},
		{
			ID:        uuid.New(),
			Action:    audit.ActionVisitorCheckedOut,
			Details:   "Visitante Maria Souza fez checkout da Sala Rubi",
			Actor:     &audit.Actor{ID: "op-1", Name: "Carlos"},
			Level:     audit.LevelInfo,
			Timestamp: base.Add(-time.Minute),
		},
		{
			ID:        uuid.New(),
			Action:    audit.ActionUserLogout,
			Details:   "Usuário fez logout",
			Level:     audit.LevelInfo,
			Timestamp: base,
		},
	}
	for _, e := range entries {
		s.Require().NoError(s.store.Append(ctx, e))
	}

	got, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(audit.ActionUserLogout, got[0].Action)
	s.Nil(got[0].Actor)
	s.Equal(audit.ActionVisitorRegistered, got[2].Action)
	s.Require().NotNil(got[2].Actor)
	s.Equal("Carlos", got[2].Actor.Name)
}

func (s *AuditStoreSuite) TestListRecentLimit() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := range 5 {
		s.Require().NoError(s.store.Append(ctx, audit.Entry{
			ID:        uuid.New(),
			Action:    audit.ActionUserLogin,
			Details:   "Usuário Carlos fez login",
			Level:     audit.LevelInfo,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.True(got[0].Timestamp.After(got[1].Timestamp))
}
