package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"channelling/internal/lifecycle"
	"channelling/internal/platform/database"
	"channelling/pkg/platform/sentinel"
)

type institution struct {
	lifecycle.Envelope
	lifecycle.Definition
	CountryID int64 `json:"country_id"`
}

var institutionDescriptor = lifecycle.Descriptor[*institution]{
	Name: "institution",
	New:  func() *institution { return &institution{} },
	CopyFields: func(dst, src *institution) {
		dst.CopyDescription(&src.Definition)
		dst.CountryID = src.CountryID
	},
	References: []string{"country_id"},
}

type city struct {
	lifecycle.Envelope
	Name    string `json:"name"`
	StateID int64  `json:"state_id"`
}

var cityDescriptor = lifecycle.Descriptor[*city]{
	Name:       "city",
	New:        func() *city { return &city{} },
	CopyFields: func(dst, src *city) { dst.Name, dst.StateID = src.Name, src.StateID },
	References: []string{"state_id"},
}

// StoreSuite runs the SQL store against a real SQLite file.
type StoreSuite struct {
	suite.Suite
	db           *sql.DB
	institutions *Store[*institution]
	cities       *Store[*city]
	ctx          context.Context
	now          time.Time
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	dsn := filepath.Join(s.T().TempDir(), "records.db")
	db, err := database.Open(s.ctx, database.Options{Driver: "sqlite", DSN: dsn})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.ctx, db, "sqlite"))
	s.db = db
	s.institutions = New(db, SQLite, institutionDescriptor)
	s.cities = New(db, SQLite, cityDescriptor)
	s.now = time.Date(2026, 2, 1, 10, 15, 30, 123456000, time.UTC)
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *StoreSuite) newInstitution(code string, country int64) *institution {
	i := &institution{CountryID: country}
	i.Code = code
	i.Description = "institution " + code
	i.Status = lifecycle.StatusActive
	i.CreatedBy = "alice"
	i.CreatedAt = s.now
	return i
}

func (s *StoreSuite) TestInsertAndFind() {
	s.Run("round-trips envelope and attributes", func() {
		created, err := s.institutions.Insert(s.ctx, s.newInstitution("UOC", 1))
		s.Require().NoError(err)
		s.Equal(int64(1), created.ID)
		s.Equal(int64(1), created.Version)

		found, err := s.institutions.FindByID(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("UOC", found.Code)
		s.Equal("institution UOC", found.Description)
		s.Equal(int64(1), found.CountryID)
		s.Equal(lifecycle.StatusActive, found.Status)
		s.Equal("alice", found.CreatedBy)
		s.True(s.now.Equal(found.CreatedAt), "created %v, want %v", found.CreatedAt, s.now)
		s.Empty(found.ModifiedBy)
		s.Nil(found.ModifiedAt)
	})

	s.Run("ids are allocated per kind", func() {
		c, err := s.cities.Insert(s.ctx, &city{Envelope: lifecycle.Envelope{Status: lifecycle.StatusActive, CreatedBy: "alice", CreatedAt: s.now}, Name: "Colombo", StateID: 1})
		s.Require().NoError(err)
		s.Equal(int64(1), c.ID)

		second, err := s.institutions.Insert(s.ctx, s.newInstitution("UOM", 1))
		s.Require().NoError(err)
		s.Equal(int64(2), second.ID)
	})

	s.Run("unknown id is ErrNotFound", func() {
		_, err := s.institutions.FindByID(s.ctx, 404)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("kinds do not see each other", func() {
		_, err := s.cities.FindByID(s.ctx, 2)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreSuite) TestCodeUniqueness() {
	_, err := s.institutions.Insert(s.ctx, s.newInstitution("DUP", 1))
	s.Require().NoError(err)

	_, err = s.institutions.Insert(s.ctx, s.newInstitution("DUP", 2))
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)

	all, err := s.institutions.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)

	s.Run("unkeyed kinds accept repeated values", func() {
		for range 2 {
			_, err := s.cities.Insert(s.ctx, &city{Envelope: lifecycle.Envelope{Status: lifecycle.StatusActive, CreatedBy: "alice", CreatedAt: s.now}, Name: "Same"})
			s.Require().NoError(err)
		}
	})
}

func (s *StoreSuite) TestFindWhere() {
	for _, in := range []*institution{s.newInstitution("A", 1), s.newInstitution("B", 2), s.newInstitution("C", 1)} {
		_, err := s.institutions.Insert(s.ctx, in)
		s.Require().NoError(err)
	}
	c, err := s.institutions.FindByID(s.ctx, 3)
	s.Require().NoError(err)
	c.Status = lifecycle.StatusInactive
	_, err = s.institutions.Update(s.ctx, c, 1)
	s.Require().NoError(err)

	s.Run("by status", func() {
		got, err := s.institutions.FindWhere(s.ctx, lifecycle.Filter{Status: lifecycle.StatusInactive})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("C", got[0].Code)
	})

	s.Run("by code", func() {
		got, err := s.institutions.FindWhere(s.ctx, lifecycle.Filter{Code: "B"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(int64(2), got[0].CountryID)
	})

	s.Run("by reference attribute", func() {
		got, err := s.institutions.FindWhere(s.ctx, lifecycle.Filter{Field: "country_id", Value: "1"})
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal("A", got[0].Code)
		s.Equal("C", got[1].Code)
	})

	s.Run("empty result", func() {
		got, err := s.institutions.FindWhere(s.ctx, lifecycle.Filter{Field: "country_id", Value: "99"})
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})
}

func (s *StoreSuite) TestUpdate() {
	created, err := s.institutions.Insert(s.ctx, s.newInstitution("UPD", 1))
	s.Require().NoError(err)

	modified := s.now.Add(time.Hour)
	created.Description = "renamed"
	created.ModifiedBy = "bob"
	created.ModifiedAt = &modified

	updated, err := s.institutions.Update(s.ctx, created, 1)
	s.Require().NoError(err)
	s.Equal(int64(2), updated.Version)
	s.Equal("renamed", updated.Description)
	s.Equal("bob", updated.ModifiedBy)
	s.Require().NotNil(updated.ModifiedAt)
	s.True(modified.Equal(*updated.ModifiedAt))

	s.Run("outdated version is ErrConflict and leaves the row alone", func() {
		created.Description = "lost"
		_, err := s.institutions.Update(s.ctx, created, 1)
		s.Require().ErrorIs(err, sentinel.ErrConflict)

		found, err := s.institutions.FindByID(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("renamed", found.Description)
		s.Equal(int64(2), found.Version)
	})

	s.Run("unknown id is ErrNotFound", func() {
		ghost := s.newInstitution("GHOST", 1)
		ghost.ID = 77
		_, err := s.institutions.Update(s.ctx, ghost, 1)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreSuite) TestDelete() {
	created, err := s.institutions.Insert(s.ctx, s.newInstitution("DEL", 1))
	s.Require().NoError(err)

	s.Require().NoError(s.institutions.Delete(s.ctx, created.ID))
	_, err = s.institutions.FindByID(s.ctx, created.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().ErrorIs(s.institutions.Delete(s.ctx, created.ID), sentinel.ErrNotFound)

	s.Run("code is free again", func() {
		_, err := s.institutions.Insert(s.ctx, s.newInstitution("DEL", 1))
		s.Require().NoError(err)
	})
}
