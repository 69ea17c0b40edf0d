package persistence

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/storage/memory"
	"github.com/mcoot/survivordraft/internal/testutil"
)

// flakyStore fails every save for the listed codes
type flakyStore struct {
	*memory.SnapshotStore
	mu      sync.Mutex
	failFor map[model.RoomCode]bool
	calls   int
}

func (f *flakyStore) SaveSnapshot(ctx context.Context, room *model.Room) error {
	f.mu.Lock()
	f.calls++
	fail := f.failFor[room.Code]
	f.mu.Unlock()
	if fail {
		return errors.New("disk on fire")
	}
	return f.SnapshotStore.SaveSnapshot(ctx, room)
}

type WriterSuite struct {
	suite.Suite
	store  *flakyStore
	writer *Writer
	logs   *bytes.Buffer
	ctx    context.Context
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterSuite))
}

func (s *WriterSuite) SetupTest() {
	s.store = &flakyStore{SnapshotStore: memory.NewSnapshotStore(), failFor: map[model.RoomCode]bool{}}
	s.logs = &bytes.Buffer{}
	s.writer = NewWriter(s.store, testutil.BufferLogger(s.logs))
	s.ctx = context.Background()
}

func (s *WriterSuite) TearDownTest() {
	s.writer.Close()
}

func (s *WriterSuite) flush() {
	ctx, cancel := context.WithTimeout(s.ctx, time.Second)
	defer cancel()
	s.Require().NoError(s.writer.Flush(ctx))
}

func (s *WriterSuite) TestSaveIsAppliedByFlush() {
	s.writer.Save(testutil.SampleRoom("ABC123"))
	s.flush()

	all, _ := s.store.LoadAllSnapshots(s.ctx)
	s.Equal(testutil.SampleRoom("ABC123"), all["ABC123"])
}

func (s *WriterSuite) TestSaveCopiesRoom() {
	room := testutil.SampleRoom("ABC123")
	s.writer.Save(room)
	room.Status = model.StatusFinished
	s.flush()

	all, _ := s.store.LoadAllSnapshots(s.ctx)
	s.Equal(model.StatusVoting, all["ABC123"].Status)
}

func (s *WriterSuite) TestWritesApplyInOrder() {
	room := testutil.SampleRoom("ABC123")
	s.writer.Save(room)
	s.writer.Delete("ABC123")
	room.Status = model.StatusFinished
	s.writer.Save(room)
	s.flush()

	all, _ := s.store.LoadAllSnapshots(s.ctx)
	s.Require().Contains(all, model.RoomCode("ABC123"))
	s.Equal(model.StatusFinished, all["ABC123"].Status)
}

func (s *WriterSuite) TestFailuresAreSwallowed() {
	s.store.failFor["BAD000"] = true
	s.writer.Save(testutil.SampleRoom("BAD000"))
	s.writer.Save(testutil.SampleRoom("ABC123"))
	s.flush()

	all, _ := s.store.LoadAllSnapshots(s.ctx)
	s.Len(all, 1)
	s.Contains(all, model.RoomCode("ABC123"))
	s.Equal(2, s.store.calls)
	s.Contains(s.logs.String(), `"msg":"failed to save snapshot"`)
	s.Contains(s.logs.String(), `"room_code":"BAD000"`)
}

func (s *WriterSuite) TestCloseDrainsQueue() {
	s.writer.Save(testutil.SampleRoom("ABC123"))
	s.writer.Close()

	all, _ := s.store.LoadAllSnapshots(s.ctx)
	s.Contains(all, model.RoomCode("ABC123"))
}

func (s *WriterSuite) TestWritesAfterCloseAreIgnored() {
	s.writer.Close()
	s.writer.Save(testutil.SampleRoom("ABC123"))

	s.NoError(s.writer.Flush(s.ctx))
	all, _ := s.store.LoadAllSnapshots(s.ctx)
	s.Empty(all)
}
