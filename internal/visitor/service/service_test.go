package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"portaria/internal/audit"
	auditmemory "portaria/internal/audit/store/memory"
	"portaria/internal/visitor/models"
	"portaria/internal/visitor/store"
	dErrors "portaria/pkg/domain-errors"
	"portaria/pkg/requestcontext"
)

// Known-good CPFs for fixtures.
const (
	cpfJohn  = "04017817807"
	cpfMaria = "52998224725"
	cpfJose  = "11144477735"
	cpfAna   = "93541134780"
)

type AdmissionSuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.InMemory
	auditLog *audit.Service
	entries  *auditmemory.InMemoryStore
	svc      *Service
	operator models.Operator
}

func (s *AdmissionSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.entries = auditmemory.NewInMemoryStore()
	s.auditLog = audit.NewService(s.entries, logger)
	s.svc = New(s.store, s.auditLog, logger, nil)
	s.operator = models.Operator{ID: "op-1", Name: "Ana Porter"}
}

func TestAdmissionSuite(t *testing.T) {
	suite.Run(t, new(AdmissionSuite))
}

func (s *AdmissionSuite) register(name, cpf, room string) (*models.Visitor, error) {
	return s.svc.Register(s.ctx, models.RegisterRequest{
		Name:  name,
		CPF:   cpf,
		Email: "visitor@example.com",
		Room:  room,
	}, s.operator)
}

func (s *AdmissionSuite) TestRegisterValidation() {
	s.Run("empty required fields", func() {
		_, err := s.svc.Register(s.ctx, models.RegisterRequest{}, s.operator)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("Name, CPF, and email are required", dErrors.MessageOf(err))
	})

	s.Run("invalid CPF checksum", func() {
		_, err := s.register("John Doe", "04017817808", "Sala Rubi")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("Invalid CPF format", dErrors.MessageOf(err))
	})

	s.Run("malformed email", func() {
		_, err := s.svc.Register(s.ctx, models.RegisterRequest{
			Name: "John Doe", CPF: cpfJohn, Email: "not-an-email", Room: "Sala Rubi",
		}, s.operator)
		s.Require().Error(err)
		s.Equal("Invalid email format", dErrors.MessageOf(err))
	})

	s.Run("unknown room", func() {
		_, err := s.register("John Doe", cpfJohn, "Sala Inexistente")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("formatted CPF is accepted and normalized", func() {
		v, err := s.register("John Doe", "040.178.178-07", "Sala Rubi")
		s.Require().NoError(err)
		s.Equal(cpfJohn, v.CPF)
	})
}

func (s *AdmissionSuite) TestRegisterSetsLifecycleFields() {
	now := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, now)

	v, err := s.svc.Register(ctx, models.RegisterRequest{
		Name: "John Doe", CPF: cpfJohn, Email: "john@x.com", Room: "Sala Diamante",
	}, s.operator)
	s.Require().NoError(err)

	s.Equal(models.StatusInBuilding, v.Status)
	s.Equal(now, v.CheckInTime)
	s.Nil(v.CheckOutTime)
	s.Equal("Ana Porter", v.RegisteredBy)
	s.Equal("op-1", v.RegisteredByID)
	s.Equal("Ana Porter", v.CheckedInBy)
	s.Equal(now, v.CreatedAt)
	s.Equal(now, v.UpdatedAt)
}

func (s *AdmissionSuite) TestDuplicateCheckInBlocked() {
	_, err := s.register("John Doe", cpfJohn, "Sala Rubi")
	s.Require().NoError(err)

	s.Run("second check-in for the same person is rejected naming the room", func() {
		_, err := s.register("John Doe", cpfJohn, "Sala Safira")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("Visitante John Doe já está no prédio (Sala Rubi). Faça checkout antes de registrar em nova sala.",
			dErrors.MessageOf(err))
	})

	s.Run("after checkout the same person can register again", func() {
		first, findErr := s.store.FindMostRecentByCPF(s.ctx, cpfJohn)
		s.Require().NoError(findErr)
		_, err := s.svc.Checkout(s.ctx, first.ID.String(), s.operator)
		s.Require().NoError(err)

		again, err := s.register("John Doe", cpfJohn, "Sala Safira")
		s.Require().NoError(err)
		s.Equal("Sala Safira", again.Room)

		// History accumulates, no merge.
		all, err := s.svc.List(s.ctx, models.FilterAll)
		s.Require().NoError(err)
		s.Len(all, 2)
	})
}

func (s *AdmissionSuite) TestRoomCapacity() {
	people := []struct{ name, cpf string }{
		{"Maria", cpfMaria},
		{"Jose", cpfJose},
	}
	for _, p := range people {
		_, err := s.register(p.name, p.cpf, "Sala Esmeralda")
		s.Require().NoError(err)
	}

	s.Run("third visitor still fits", func() {
		_, err := s.register("Ana", cpfAna, "Sala Esmeralda")
		s.Require().NoError(err)
	})

	s.Run("fourth visitor is rejected with the capacity message", func() {
		_, err := s.register("John Doe", cpfJohn, "Sala Esmeralda")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeCapacity))
		s.Equal("Sala Esmeralda está lotada (máximo 3 visitantes). Escolha outra sala ou aguarde uma vaga.",
			dErrors.MessageOf(err))
	})

	s.Run("other rooms are unaffected", func() {
		_, err := s.register("John Doe", cpfJohn, "Sala Rubi")
		s.Require().NoError(err)
	})
}

func (s *AdmissionSuite) TestCheckout() {
	s.Run("empty id", func() {
		_, err := s.svc.Checkout(s.ctx, "  ", s.operator)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown id", func() {
		_, err := s.svc.Checkout(s.ctx, uuid.NewString(), s.operator)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("known id transitions to checked_out", func() {
		checkIn := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		v, err := s.svc.Register(requestcontext.WithTime(s.ctx, checkIn), models.RegisterRequest{
			Name: "John Doe", CPF: cpfJohn, Email: "john@x.com", Room: "Sala Rubi",
		}, s.operator)
		s.Require().NoError(err)

		out, err := s.svc.Checkout(requestcontext.WithTime(s.ctx, checkIn.Add(time.Hour)), v.ID.String(), s.operator)
		s.Require().NoError(err)
		s.Equal(models.StatusCheckedOut, out.Status)
		s.Require().NotNil(out.CheckOutTime)
		s.False(out.CheckOutTime.Before(out.CheckInTime))
		s.Equal("Ana Porter", out.CheckedOutBy)
		s.Equal("op-1", out.CheckedOutByID)
	})
}

func (s *AdmissionSuite) TestListInBuildingFilter() {
	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	var last *models.Visitor
	for i, p := range []struct{ name, cpf string }{
		{"Maria", cpfMaria}, {"Jose", cpfJose}, {"Ana", cpfAna},
	} {
		ctx := requestcontext.WithTime(s.ctx, base.Add(time.Duration(i)*time.Minute))
		v, err := s.svc.Register(ctx, models.RegisterRequest{
			Name: p.name, CPF: p.cpf, Email: "v@example.com", Room: "Sala Diamante",
		}, s.operator)
		s.Require().NoError(err)
		last = v
	}
	_, err := s.svc.Checkout(s.ctx, last.ID.String(), s.operator)
	s.Require().NoError(err)

	in, err := s.svc.List(s.ctx, models.FilterInBuilding)
	s.Require().NoError(err)
	s.Require().Len(in, 2)
	for _, v := range in {
		s.Equal(models.StatusInBuilding, v.Status)
	}
	// Newest-created first.
	s.Equal("Jose", in[0].Name)
	s.Equal("Maria", in[1].Name)
}

func (s *AdmissionSuite) TestRoomOccupancy() {
	_, err := s.register("Maria", cpfMaria, "Sala Rubi")
	s.Require().NoError(err)
	_, err = s.register("Jose", cpfJose, "Sala Rubi")
	s.Require().NoError(err)

	occ, err := s.svc.RoomOccupancy(s.ctx)
	s.Require().NoError(err)
	s.Len(occ, len(models.Rooms()))
	s.Equal(2, occ["Sala Rubi"])
	s.Equal(0, occ["Sala Diamante"])
}

func (s *AdmissionSuite) TestEndToEndWithAuditTrail() {
	v, err := s.svc.Register(s.ctx, models.RegisterRequest{
		Name: "John Doe", CPF: cpfJohn, Email: "john@x.com", Room: "Sala Diamante",
	}, s.operator)
	s.Require().NoError(err)
	s.Equal(models.StatusInBuilding, v.Status)

	newest := s.auditLog.List(s.ctx, 1)
	s.Require().Len(newest, 1)
	s.Equal(audit.ActionVisitorRegistered, newest[0].Action)
	s.Contains(newest[0].Details, "Sala Diamante")
	s.Require().NotNil(newest[0].Actor)
	s.Equal("Ana Porter", newest[0].Actor.Name)

	out, err := s.svc.Checkout(s.ctx, v.ID.String(), s.operator)
	s.Require().NoError(err)
	s.Equal(models.StatusCheckedOut, out.Status)

	newest = s.auditLog.List(s.ctx, 1)
	s.Require().Len(newest, 1)
	s.Equal(audit.ActionVisitorCheckedOut, newest[0].Action)
	s.Equal(fmt.Sprintf("Visitante %s fez checkout da %s", out.Name, out.Room), newest[0].Details)
}

func (s *AdmissionSuite) TestAuditFailureDoesNotRollBackRegistration() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broken := audit.NewService(failingAuditStore{}, logger)
	svc := New(s.store, broken, logger, nil)

	v, err := svc.Register(s.ctx, models.RegisterRequest{
		Name: "John Doe", CPF: cpfJohn, Email: "john@x.com", Room: "Sala Rubi",
	}, s.operator)
	s.Require().NoError(err)

	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInBuilding, stored.Status)
}

type failingAuditStore struct{}

func (failingAuditStore) Append(context.Context, audit.Entry) error {
	return fmt.Errorf("log store down")
}

func (failingAuditStore) ListRecent(context.Context, int) ([]audit.Entry, error) {
	return nil, fmt.Errorf("log store down")
}
