package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	path  string
	store *SnapshotStore
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "rooms.db")
	store, err := Open(s.path)
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *StoreSuite) TestOpenRequiresPath() {
	_, err := Open("  ")
	s.Error(err)
}

func (s *StoreSuite) TestSaveAndLoadSnapshot() {
	room := testutil.SampleRoom("ABC123")

	err := s.store.SaveSnapshot(s.ctx, room)
	s.Require().NoError(err)

	all, err := s.store.LoadAllSnapshots(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(room, all["ABC123"])
}

func (s *StoreSuite) TestSaveSnapshotUpserts() {
	room := testutil.SampleRoom("ABC123")
	_ = s.store.SaveSnapshot(s.ctx, room)
	room.Status = model.StatusFinished
	err := s.store.SaveSnapshot(s.ctx, room)
	s.Require().NoError(err)

	all, _ := s.store.LoadAllSnapshots(s.ctx)
	s.Len(all, 1)
	s.Equal(model.StatusFinished, all["ABC123"].Status)
}

func (s *StoreSuite) TestDeleteSnapshot() {
	_ = s.store.SaveSnapshot(s.ctx, testutil.SampleRoom("ABC123"))
	_ = s.store.SaveSnapshot(s.ctx, testutil.SampleRoom("DEF456"))

	err := s.store.DeleteSnapshot(s.ctx, "ABC123")
	s.Require().NoError(err)

	all, _ := s.store.LoadAllSnapshots(s.ctx)
	s.Len(all, 1)
	s.Contains(all, model.RoomCode("DEF456"))
}

func (s *StoreSuite) TestSnapshotsSurviveReopen() {
	_ = s.store.SaveSnapshot(s.ctx, testutil.SampleRoom("ABC123"))
	s.Require().NoError(s.store.Close())

	reopened, err := Open(s.path)
	s.Require().NoError(err)
	s.store = reopened

	all, err := reopened.LoadAllSnapshots(s.ctx)
	s.Require().NoError(err)
	s.Equal(testutil.SampleRoom("ABC123"), all["ABC123"])
}
