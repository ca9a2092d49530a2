package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"shifttrust/internal/audit"
	"shifttrust/internal/domain"
	dErrors "shifttrust/pkg/domain-errors"
	"shifttrust/pkg/requestcontext"
)

type IdentityServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.service = NewService(s.store, nil, nil)
	s.now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *IdentityServiceSuite) TestRegisterEmitsAuditEvent() {
	publisher := audit.NewPublisher(4)
	service := NewService(NewInMemoryStore(), publisher, nil)

	ident, err := service.Register(s.ctx, RegisterInput{Role: "worker", Name: "Asha Verma", Phone: "+15550001111"})
	s.Require().NoError(err)

	select {
	case event := <-publisher.Inbox():
		s.Equal(audit.ActionRegister, event.Action)
		s.Equal(ident.ID.String(), event.ActorID)
		s.Equal("worker", event.Outcome)
	default:
		s.Fail("expected a register audit event")
	}

	s.Run("failed registration emits nothing", func() {
		_, err := service.Register(s.ctx, RegisterInput{Role: "worker", Name: "Dana Iqbal", Phone: "+15550001111"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		select {
		case <-publisher.Inbox():
			s.Fail("conflict must not be audited")
		default:
		}
	})
}

func (s *IdentityServiceSuite) register(role, name, phone string) domain.Identity {
	ident, err := s.service.Register(s.ctx, RegisterInput{Role: role, Name: name, Phone: phone})
	s.Require().NoError(err)
	return ident
}

func (s *IdentityServiceSuite) TestRegister() {
	s.Run("valid registration assigns id and timestamps", func() {
		ident := s.register("worker", "Asha Verma", "+15550001111")
		s.NotEqual(uuid.Nil, ident.ID)
		s.Equal(domain.RoleWorker, ident.Role)
		s.Equal(s.now, ident.CreatedAt)
	})

	s.Run("unknown role is invalid input", func() {
		_, err := s.service.Register(s.ctx, RegisterInput{Role: "manager", Name: "Asha Verma", Phone: "+15550001112"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("short name is invalid input", func() {
		_, err := s.service.Register(s.ctx, RegisterInput{Role: "worker", Name: "A", Phone: "+15550001113"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("short phone is invalid input", func() {
		_, err := s.service.Register(s.ctx, RegisterInput{Role: "worker", Name: "Asha Verma", Phone: "12345"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("duplicate phone conflicts", func() {
		s.register("worker", "Asha Verma", "+15550002222")
		_, err := s.service.Register(s.ctx, RegisterInput{Role: "customer", Name: "Ben Okafor", Phone: "+15550002222"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("biometric inputs are stored as hashes only", func() {
		ident, err := s.service.Register(s.ctx, RegisterInput{
			Role:      "worker",
			Name:      "Asha Verma",
			Phone:     "+15550003333",
			FaceImage: "raw-face-bytes",
			IDImage:   "raw-id-bytes",
		})
		s.Require().NoError(err)
		s.NotEmpty(ident.FaceHash)
		s.NotEmpty(ident.IDHash)
		s.NotContains(ident.FaceHash, "raw-face-bytes")
		s.NotEqual(ident.FaceHash, ident.IDHash)
	})

	s.Run("initial platform link is kept", func() {
		ident := s.register("worker", "Asha Verma", "+15550004444")
		s.Empty(ident.PlatformLinks)

		withLink, err := s.service.Register(s.ctx, RegisterInput{
			Role:         "worker",
			Name:         "Dana Iqbal",
			Phone:        "+15550005555",
			PlatformLink: "https://gigs.example/dana",
		})
		s.Require().NoError(err)
		s.Equal([]string{"https://gigs.example/dana"}, withLink.PlatformLinks)
	})
}

func (s *IdentityServiceSuite) TestGet() {
	s.Run("missing identity is not found", func() {
		_, err := s.service.Get(s.ctx, uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("existing identity round trips", func() {
		ident := s.register("supervisor", "Ravi Nair", "+15550006666")
		got, err := s.service.Get(s.ctx, ident.ID)
		s.NoError(err)
		s.Equal(ident.Name, got.Name)
		s.Equal(domain.RoleSupervisor, got.Role)
	})
}

func (s *IdentityServiceSuite) TestRequireRole() {
	s.Run("missing identity stays not found", func() {
		_, err := s.service.RequireRole(s.ctx, uuid.New(), domain.RoleWorker)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("wrong role is distinguished from missing", func() {
		customer := s.register("customer", "Ben Okafor", "+15550007777")
		_, err := s.service.RequireRole(s.ctx, customer.ID, domain.RoleWorker)
		s.True(dErrors.HasCode(err, dErrors.CodeWrongRole))
	})

	s.Run("matching role passes", func() {
		worker := s.register("worker", "Asha Verma", "+15550008888")
		got, err := s.service.RequireRole(s.ctx, worker.ID, domain.RoleWorker)
		s.NoError(err)
		s.Equal(worker.ID, got.ID)
	})
}

func (s *IdentityServiceSuite) TestLookupPhone() {
	s.Run("unregistered phone is not an error", func() {
		_, found, err := s.service.LookupPhone(s.ctx, "+15559999999")
		s.NoError(err)
		s.False(found)
	})

	s.Run("registered phone resolves", func() {
		ident := s.register("worker", "Asha Verma", "+15550009999")
		got, found, err := s.service.LookupPhone(s.ctx, "+15550009999")
		s.NoError(err)
		s.True(found)
		s.Equal(ident.ID, got.ID)
	})
}

func (s *IdentityServiceSuite) TestAddPlatformLink() {
	s.Run("missing identity is not found", func() {
		err := s.service.AddPlatformLink(s.ctx, uuid.New(), "https://gigs.example/x")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty link is invalid input", func() {
		ident := s.register("worker", "Asha Verma", "+15550010000")
		err := s.service.AddPlatformLink(s.ctx, ident.ID, "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("repeat link is a no-op", func() {
		ident := s.register("worker", "Ravi Basu", "+15550013333")
		s.Require().NoError(s.service.AddPlatformLink(s.ctx, ident.ID, "https://gigs.example/r"))
		s.Require().NoError(s.service.AddPlatformLink(s.ctx, ident.ID, " https://gigs.example/r "))
		got, err := s.service.Get(s.ctx, ident.ID)
		s.NoError(err)
		s.Equal([]string{"https://gigs.example/r"}, got.PlatformLinks)
	})

	s.Run("links accumulate", func() {
		ident := s.register("worker", "Dana Iqbal", "+15550011111")
		s.Require().NoError(s.service.AddPlatformLink(s.ctx, ident.ID, "https://gigs.example/a"))
		s.Require().NoError(s.service.AddPlatformLink(s.ctx, ident.ID, "https://gigs.example/b"))
		got, err := s.service.Get(s.ctx, ident.ID)
		s.NoError(err)
		s.Equal([]string{"https://gigs.example/a", "https://gigs.example/b"}, got.PlatformLinks)
	})
}
