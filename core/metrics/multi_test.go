package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadshare/core/model"
)

type recordSink struct {
	runs, allocs, flushes int
	fail                  bool
}

func (r *recordSink) RecordRun(RunEvent) error {
	r.runs++
	if r.fail {
		return errors.New("run failed")
	}
	return nil
}

func (r *recordSink) RecordAllocation(AllocationEvent) error {
	r.allocs++
	return nil
}

func (r *recordSink) Flush(context.Context) error {
	r.flushes++
	return nil
}

type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunEvent) error {
	r.runs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{fail: true}
	s2 := &recordSink{}
	s3 := &runOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordRun(RunEvent{}); err == nil {
		t.Fatal("expected joined error")
	}
	if err := m.RecordAllocation(AllocationEvent{}); err != nil {
		t.Fatalf("record allocation: %v", err)
	}
	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 || s3.runs != 1 {
		t.Fatalf("run not forwarded to every sink")
	}
	if s1.allocs != 1 || s2.allocs != 1 || s2.flushes != 1 {
		t.Fatalf("allocation or flush not forwarded")
	}
}

func TestBusEnergy(t *testing.T) {
	res := model.AllocationResult{
		{Bus: "3", Profile: model.LoadProfile{{1, 2}}},
		{Bus: "1", Profile: model.LoadProfile{{4}}},
		{Bus: "3", Profile: model.LoadProfile{{0.5}}},
	}
	order, sums := BusEnergy(res)
	if len(order) != 2 || order[0] != "3" || order[1] != "1" {
		t.Fatalf("unexpected order %v", order)
	}
	if sums["3"] != 3.5 || sums["1"] != 4 {
		t.Fatalf("unexpected sums %v", sums)
	}
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) RecordRun(ev RunEvent) error {
	return m.Called(ev).Error(0)
}

func (m *mockSink) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestMultiSinkFlushJoinsErrors(t *testing.T) {
	ctx := context.Background()
	ok := &mockSink{}
	ok.On("Flush", ctx).Return(nil).Once()
	bad := &mockSink{}
	bad.On("Flush", ctx).Return(errors.New("push refused")).Once()

	err := NewMultiSink(bad, ok).Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push refused")
	ok.AssertExpectations(t)
	bad.AssertExpectations(t)
}

func TestMultiSinkRecordRunForwardsEvent(t *testing.T) {
	ev := RunEvent{RunID: "r1", Nodes: 8, Success: true}
	s := &mockSink{}
	s.On("RecordRun", ev).Return(nil).Once()
	require.NoError(t, NewMultiSink(s).RecordRun(ev))
	s.AssertExpectations(t)
	s.AssertNotCalled(t, "Flush", mock.Anything)
}
