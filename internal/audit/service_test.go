package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"portaria/internal/audit"
	"portaria/internal/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Entry) error {
	return errors.New("store down")
}

func (failingStore) ListRecent(context.Context, int) ([]audit.Entry, error) {
	return nil, errors.New("store down")
}

type recordingSink struct {
	entries []audit.Entry
	err     error
}

func (s *recordingSink) Publish(_ context.Context, entry audit.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

type AuditServiceSuite struct {
	suite.Suite
	ctx    context.Context
	logger *slog.Logger
}

func (s *AuditServiceSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceSuite))
}

func (s *AuditServiceSuite) TestLogAppendsWithServerTimestamp() {
	store := memory.NewInMemoryStore()
	svc := audit.NewService(store, s.logger)

	before := time.Now().UTC()
	svc.Log(s.ctx, audit.ActionVisitorRegistered, "Visitante Maria registrado na Sala Rubi",
		&audit.Actor{ID: "op-1", Name: "Ana"}, audit.LevelInfo)

	entries := svc.List(s.ctx, 10)
	s.Require().Len(entries, 1)
	entry := entries[0]
	s.Equal(audit.ActionVisitorRegistered, entry.Action)
	s.Equal("Visitante Maria registrado na Sala Rubi", entry.Details)
	s.Require().NotNil(entry.Actor)
	s.Equal("Ana", entry.Actor.Name)
	s.Equal(audit.LevelInfo, entry.Level)
	s.False(entry.Timestamp.Before(before))
}

func (s *AuditServiceSuite) TestLogSwallowsAppendFailure() {
	svc := audit.NewService(failingStore{}, s.logger)

	// Must not panic or surface the error in any way.
	svc.Log(s.ctx, audit.ActionUserLogout, "Usuário fez logout", nil, audit.LevelInfo)
}

func (s *AuditServiceSuite) TestListNewestFirstAndBounded() {
	store := memory.NewInMemoryStore()
	svc := audit.NewService(store, s.logger)

	for i := 0; i < audit.DefaultListLimit+20; i++ {
		svc.Log(s.ctx, audit.ActionUserLogin, "Usuário Ana fez login", nil, audit.LevelInfo)
	}

	s.Run("zero max falls back to the default cap", func() {
		entries := svc.List(s.ctx, 0)
		s.Len(entries, audit.DefaultListLimit)
	})

	s.Run("max above the cap is clamped", func() {
		entries := svc.List(s.ctx, audit.DefaultListLimit+1000)
		s.Len(entries, audit.DefaultListLimit)
	})

	s.Run("entries come back newest first", func() {
		entries := svc.List(s.ctx, 50)
		s.Require().Len(entries, 50)
		for i := 1; i < len(entries); i++ {
			s.False(entries[i-1].Timestamp.Before(entries[i].Timestamp))
		}
	})
}

func (s *AuditServiceSuite) TestListDegradesToEmptyOnFailure() {
	svc := audit.NewService(failingStore{}, s.logger)
	entries := svc.List(s.ctx, 10)
	s.NotNil(entries)
	s.Empty(entries)
}

func (s *AuditServiceSuite) TestSinkReceivesCopies() {
	store := memory.NewInMemoryStore()
	sink := &recordingSink{}
	svc := audit.NewService(store, s.logger, audit.WithSink(sink))

	svc.Log(s.ctx, audit.ActionVisitorCheckedOut, "Visitante Maria fez checkout da Sala Rubi", nil, audit.LevelInfo)

	s.Require().Len(sink.entries, 1)
	s.Equal(audit.ActionVisitorCheckedOut, sink.entries[0].Action)
}

func (s *AuditServiceSuite) TestSinkFailureDoesNotBlockAppend() {
	store := memory.NewInMemoryStore()
	sink := &recordingSink{err: errors.New("broker unreachable")}
	svc := audit.NewService(store, s.logger, audit.WithSink(sink))

	svc.Log(s.ctx, audit.ActionVisitorRegistered, "Visitante Maria registrado na Sala Rubi", nil, audit.LevelInfo)

	entries := svc.List(s.ctx, 10)
	s.Len(entries, 1)
}
