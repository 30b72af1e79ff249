package cycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/worker"
)

var varKey = domain.VariableProgressKey(dailyPlayer.Key)

func TestProcessVariable_ZeroRowDeletionStillCommits(t *testing.T) {
	deleter := &fakeDeleter{rows: 0}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, varKey, day(-1))

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, int64(0), out.Rows)
	assert.True(t, today.Equal(*f.progress(t, varKey)))

	invalidated, notified := f.notifier.counts()
	assert.Equal(t, 1, invalidated)
	assert.Equal(t, 1, notified)
}

func TestProcessVariable_CrashRecovery(t *testing.T) {
	deleter := &fakeDeleter{failAll: true}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, varKey, day(-2))

	// Tick N: every deletion fails
	_, err := f.process(t, dailyPlayer)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDown)
	assert.True(t, day(-2).Equal(*f.progress(t, varKey)), "progress unchanged after failed tick")

	invalidated, notified := f.notifier.counts()
	assert.Zero(t, invalidated)
	assert.Zero(t, notified)

	// Tick N+1: store is back
	deleter.mu.Lock()
	deleter.failAll = false
	deleter.calls = nil
	deleter.mu.Unlock()

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Processed)
	assert.True(t, today.Equal(*f.progress(t, varKey)))
	assert.Equal(t, []time.Time{day(-1), day(0)}, deleter.boundaries())

	_, notified = f.notifier.counts()
	assert.Equal(t, 2, notified, "actions fire once per boundary, not once per attempt")

	status := f.engine.Status()
	require.Len(t, status, 1)
	assert.Equal(t, StateIdle, status[0].State)
	assert.Equal(t, 1, status[0].Failures)
	assert.Empty(t, status[0].LastError)
}

func TestProcessVariable_FailureMidSequenceKeepsCommittedBoundaries(t *testing.T) {
	deleter := &fakeDeleter{failOn: map[int]bool{2: true}}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, varKey, day(-3))

	out, err := f.process(t, dailyPlayer)
	require.Error(t, err)
	assert.Equal(t, 1, out.Processed)
	assert.True(t, day(-2).Equal(*f.progress(t, varKey)))

	status := f.engine.Status()
	require.Len(t, status, 1)
	assert.Equal(t, StateFailed, status[0].State)
	assert.Contains(t, status[0].LastError, errDown.Error())

	// The next run resumes at the failed boundary
	out, err = f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Processed)
	assert.Equal(t, []time.Time{day(-2), day(-1), day(-1), day(0)}, deleter.boundaries())

	_, notified := f.notifier.counts()
	assert.Equal(t, 3, notified)
}

func TestProcessVariable_FutureProgressIsCorrected(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, varKey, day(3))
	f.setProgress(t, domain.GlobalProgressKey(dailyPlayer.Cycle), day(3))

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)

	assert.True(t, out.SkewCorrected)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, []time.Time{today}, deleter.boundaries())
	assert.True(t, today.Equal(*f.progress(t, varKey)))
	assert.True(t, today.Equal(*f.progress(t, domain.GlobalProgressKey(dailyPlayer.Cycle))))

	_, notified := f.notifier.counts()
	assert.Equal(t, 1, notified)

	// Subsequent runs in the same cycle do nothing
	out, err = f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Zero(t, out.Processed)
}

func TestProcessVariable_FutureProgressFailureLeavesItUntouched(t *testing.T) {
	deleter := &fakeDeleter{failAll: true}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, varKey, day(3))

	_, err := f.process(t, dailyPlayer)
	require.Error(t, err)
	assert.True(t, day(3).Equal(*f.progress(t, varKey)))
}

func TestProcessVariable_MultiBatchDeletion(t *testing.T) {
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer})
	f.vars.batchResults = []int64{10, 10, 10, 4}
	f.setProgress(t, varKey, day(-1))

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)

	assert.Equal(t, 4, f.vars.batchCalls)
	assert.Zero(t, f.vars.globalCalls)
	assert.Equal(t, 1, out.Processed, "one boundary commit")
	assert.Equal(t, 4, out.Batches)
	assert.Equal(t, int64(34), out.Rows)
	assert.True(t, today.Equal(*f.progress(t, varKey)))
}

func TestProcessVariable_MultiBoundaryCatchUp(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, varKey, day(-3))

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Processed)
	assert.Equal(t, []time.Time{day(-2), day(-1), day(0)}, deleter.boundaries(), "oldest first")
	assert.True(t, today.Equal(*f.progress(t, varKey)))

	invalidated, notified := f.notifier.counts()
	assert.Equal(t, 3, invalidated)
	assert.Equal(t, 3, notified)
}

func TestProcessVariable_GlobalUsesSingleStatementPath(t *testing.T) {
	f := newFixture(t, []domain.VariableDefinition{dailyGlobal})
	f.setProgress(t, domain.VariableProgressKey(dailyGlobal.Key), day(-2))

	out, err := f.process(t, dailyGlobal)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Processed)
	assert.Equal(t, 2, f.vars.globalCalls, "exactly one statement per boundary")
	assert.Zero(t, f.vars.batchCalls)
}

func TestProcessVariable_ActionsFireAfterCommit(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, varKey, day(-2))

	var seen []time.Time
	f.notifier.onNotify = func(def domain.VariableDefinition) {
		seen = append(seen, *f.progress(t, varKey))
	}

	_, err := f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(-1), day(0)}, seen)
}

func TestProcessVariable_ReportsNotifyingOnlyAfterCommit(t *testing.T) {
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(&fakeDeleter{}))
	f.setProgress(t, varKey, day(-1))

	var during VariableStatus
	f.notifier.onNotify = func(def domain.VariableDefinition) {
		for _, st := range f.engine.Status() {
			if st.Variable == def.Key {
				during = st
			}
		}
	}

	_, err := f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, StateNotifying, during.State)
	require.NotNil(t, during.LastBoundary)
	assert.True(t, today.Equal(*during.LastBoundary))
}

func TestProcessVariable_FallsBackToGlobalProgress(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, domain.GlobalProgressKey(dailyPlayer.Cycle), day(-1))

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, SourceGlobal, out.Source)
	assert.Equal(t, 1, out.Processed)
	assert.True(t, today.Equal(*f.progress(t, varKey)))
}

func TestProcessVariable_SeedsFromNowWithoutData(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, SourceSeeded, out.Source)
	assert.Zero(t, out.Processed, "a new variable does not trigger historical catch-up")
	assert.True(t, today.Equal(*f.progress(t, varKey)))

	// The next day resets normally
	f.clock.Advance(24 * time.Hour)
	out, err = f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, SourceVariable, out.Source)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, []time.Time{day(1)}, deleter.boundaries())
}

func TestProcessVariable_SeedsFromEarliestData(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	earliest := day(-2).Add(10 * time.Hour)
	f.vars.earliest = &earliest

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, SourceSeeded, out.Source)
	assert.Equal(t, 2, out.Processed)
	assert.Equal(t, []time.Time{day(-1), day(0)}, deleter.boundaries())
}

func TestProcessVariable_SeedIsClampedToNow(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	future := day(5)
	f.vars.earliest = &future

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Zero(t, out.Processed)
	assert.True(t, today.Equal(*f.progress(t, varKey)))
}

func TestProcessVariable_CatchUpIsCappedNotSkipped(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter), withMaxCatchUp(2))
	f.setProgress(t, varKey, day(-5))

	out, err := f.process(t, dailyPlayer)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Processed)
	assert.True(t, out.More)
	assert.True(t, day(-3).Equal(*f.progress(t, varKey)))

	for out.More {
		out, err = f.process(t, dailyPlayer)
		require.NoError(t, err)
	}
	assert.Equal(t, []time.Time{day(-4), day(-3), day(-2), day(-1), day(0)}, deleter.boundaries())
}

func TestProcessVariable_MalformedCustomCycleIsConfigurationError(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, nil, withDeleter(deleter))
	def := domain.VariableDefinition{
		Key: "broken", Scope: domain.ScopeGlobal,
		Cycle: domain.Cycle{Kind: domain.CycleCustom, Expr: "not a cron"},
	}

	_, err := f.process(t, def)
	require.Error(t, err)
	assert.True(t, domain.IsConfiguration(err))
	assert.Empty(t, deleter.boundaries())
	assert.Nil(t, f.progress(t, domain.VariableProgressKey("broken")))
}

func TestProcessVariable_CustomCycle(t *testing.T) {
	deleter := &fakeDeleter{}
	def := domain.VariableDefinition{
		Key: "shift_count", Scope: domain.ScopePlayer,
		Cycle: domain.Cycle{Kind: domain.CycleCustom, Expr: "0 6,18 * * *"},
	}
	f := newFixture(t, []domain.VariableDefinition{def}, withDeleter(deleter))
	f.setProgress(t, domain.VariableProgressKey(def.Key), day(-1).Add(18*time.Hour))

	out, err := f.process(t, def)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, []time.Time{today.Add(6 * time.Hour)}, deleter.boundaries())
}

func TestRunOnce(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer, dailyGlobal}, withDeleter(deleter))
	f.setProgress(t, domain.GlobalProgressKey(dailyPlayer.Cycle), day(-1))

	outcomes := f.engine.RunOnce(context.Background())
	require.Len(t, outcomes, 2)
	for _, out := range outcomes {
		assert.Equal(t, 1, out.Processed, out.Variable)
		assert.Empty(t, out.Error)
	}

	// Both variables read the same global entry; it moves once the run is over
	global := f.progress(t, domain.GlobalProgressKey(dailyPlayer.Cycle))
	require.NotNil(t, global)
	assert.True(t, today.Equal(*global))
	assert.True(t, today.Equal(*f.progress(t, domain.VariableProgressKey(dailyGlobal.Key))))
}

func TestRunOnce_SkipsInFlightVariable(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))

	release, ok := f.engine.inFlight.TryLock(dailyPlayer.Key)
	require.True(t, ok)
	assert.True(t, f.engine.IsInFlight(dailyPlayer.Key))

	outcomes := f.engine.RunOnce(context.Background())
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Skipped)
	release()
	assert.False(t, f.engine.IsInFlight(dailyPlayer.Key))
}

func TestTick_DispatchesToPool(t *testing.T) {
	pool := worker.NewPool(2, 10)
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer, dailyGlobal}, withDeleter(deleter), withDispatcher(pool))
	f.setProgress(t, domain.GlobalProgressKey(dailyPlayer.Cycle), day(-1))

	pool.Start(context.Background())
	defer pool.Stop()

	assert.Equal(t, 2, f.engine.Tick(context.Background()))
	assert.Eventually(t, func() bool {
		_, notified := f.notifier.counts()
		return notified == 2
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return !f.engine.IsInFlight(dailyPlayer.Key) && !f.engine.IsInFlight(dailyGlobal.Key)
	}, time.Second, 5*time.Millisecond)

	// The last job of the cycle moves the global entry
	assert.Eventually(t, func() bool {
		global := f.progress(t, domain.GlobalProgressKey(dailyPlayer.Cycle))
		return global != nil && today.Equal(*global)
	}, time.Second, 5*time.Millisecond)
}

func TestTick_CommitsGlobalProgressForSharedCycle(t *testing.T) {
	pool := worker.NewPool(2, 10)
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer, dailyGlobal}, withDeleter(deleter), withDispatcher(pool))
	f.setProgress(t, domain.VariableProgressKey(dailyPlayer.Key), day(-1))
	f.setProgress(t, domain.VariableProgressKey(dailyGlobal.Key), day(-1))

	pool.Start(context.Background())
	defer pool.Stop()

	assert.Equal(t, 2, f.engine.Tick(context.Background()))
	assert.Eventually(t, func() bool {
		global := f.progress(t, domain.GlobalProgressKey(dailyPlayer.Cycle))
		return global != nil && today.Equal(*global)
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, deleter.boundaries(), 2)
}

func TestPoolStop_InterruptsCatchUpBetweenBoundaries(t *testing.T) {
	pool := worker.NewPool(1, 10)
	deleter := &stallingDeleter{stalled: make(chan struct{}), stallOn: 2}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter), withDispatcher(pool))
	f.setProgress(t, varKey, day(-3))

	pool.Start(context.Background())
	assert.Equal(t, 1, f.engine.Tick(context.Background()))

	select {
	case <-deleter.stalled:
	case <-time.After(time.Second):
		t.Fatal("catch-up never reached the second boundary")
	}

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop waited for the whole catch-up")
	}

	assert.Equal(t, 2, deleter.callCount(), "no boundary after the interrupted one is attempted")
	assert.True(t, day(-2).Equal(*f.progress(t, varKey)), "progress stays at the last committed boundary")
	global := f.progress(t, domain.GlobalProgressKey(dailyPlayer.Cycle))
	require.NotNil(t, global)
	assert.True(t, day(-2).Equal(*global))
	_, notified := f.notifier.counts()
	assert.Equal(t, 1, notified)
}

func TestProcessVariable_CancelledContextCommitsNothing(t *testing.T) {
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter))
	f.setProgress(t, varKey, day(-2))

	release, ok := f.engine.inFlight.TryLock(dailyPlayer.Key)
	require.True(t, ok)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.engine.ProcessVariable(ctx, dailyPlayer, f.clock.Now())

	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
	assert.Empty(t, deleter.boundaries())
	assert.True(t, day(-2).Equal(*f.progress(t, varKey)))
}

func TestTick_DoesNotOverlapAVariable(t *testing.T) {
	pool := worker.NewPool(2, 10)
	block := make(chan struct{})
	deleter := &fakeDeleter{blockOnce: block}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter), withDispatcher(pool))
	f.setProgress(t, varKey, day(-1))

	pool.Start(context.Background())
	defer pool.Stop()

	assert.Equal(t, 1, f.engine.Tick(context.Background()))
	assert.Eventually(t, func() bool { return len(deleter.boundaries()) == 1 }, time.Second, time.Millisecond)

	// Still deleting: the next tick must skip the variable
	assert.Equal(t, 0, f.engine.Tick(context.Background()))

	close(block)
	assert.Eventually(t, func() bool { return !f.engine.IsInFlight(dailyPlayer.Key) }, time.Second, time.Millisecond)
	assert.Len(t, deleter.boundaries(), 1)
	assert.True(t, today.Equal(*f.progress(t, varKey)))
}

func TestTick_QueueFullReleasesFlag(t *testing.T) {
	pool := worker.NewPool(1, 0)
	deleter := &fakeDeleter{}
	f := newFixture(t, []domain.VariableDefinition{dailyPlayer}, withDeleter(deleter), withDispatcher(pool))

	// Not started: an unbuffered queue with no reader is always full
	assert.Equal(t, 0, f.engine.Tick(context.Background()))
	assert.False(t, f.engine.IsInFlight(dailyPlayer.Key))
}
