package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/imobipro/imobipro-api/app/models"
	"github.com/imobipro/imobipro-api/internal/pkg/provision"
	"github.com/stretchr/testify/assert"
)

type fakeReconciler struct {
	calls []string
	errOn map[string]error
}

func (f *fakeReconciler) Reconcile(_ context.Context, paymentID string) (*provision.ReconcileResult, error) {
	f.calls = append(f.calls, paymentID)
	if err, ok := f.errOn[paymentID]; ok {
		return nil, err
	}
	return &provision.ReconcileResult{Outcome: provision.OutcomeAlreadyProvisioned}, nil
}

type fakeStuckLister struct {
	mu      sync.Mutex
	rows    []models.Payment
	listErr error
	cutoffs []time.Time
}

func (f *fakeStuckLister) Create(*models.Payment) error { return nil }
func (f *fakeStuckLister) GetByMPPaymentID(string) (*models.Payment, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeStuckLister) UpdateStatusByMPPaymentID(string, string, string) error { return nil }
func (f *fakeStuckLister) MarkProvisioned(string, uint) error                     { return nil }

func (f *fakeStuckLister) ListApprovedUnprovisioned(olderThan time.Time) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, olderThan)
	return f.rows, f.listErr
}

func (f *fakeStuckLister) sweepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestSweepRetriesEveryStuckPayment(t *testing.T) {
	reconciler := &fakeReconciler{errOn: map[string]error{"2": errors.New("smtp still down")}}
	payments := &fakeStuckLister{rows: []models.Payment{
		{MPPaymentID: "1"},
		{MPPaymentID: "2"},
		{MPPaymentID: "3"},
	}}

	m := NewManager(reconciler, payments)
	n := m.Sweep()

	assert.Equal(t, 3, n)
	// A failed retry must not stop the rest of the sweep.
	assert.Equal(t, []string{"1", "2", "3"}, reconciler.calls)

	if assert.Equal(t, 1, payments.sweepCount()) {
		assert.WithinDuration(t, time.Now().Add(-defaultStuckAfter), payments.cutoffs[0], 5*time.Second)
	}
}

func TestSweepSurvivesListFailure(t *testing.T) {
	reconciler := &fakeReconciler{}
	payments := &fakeStuckLister{listErr: errors.New("db down")}

	m := NewManager(reconciler, payments)
	assert.Equal(t, 0, m.Sweep())
	assert.Empty(t, reconciler.calls)
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	m := NewManager(&fakeReconciler{}, &fakeStuckLister{})
	m.interval = time.Hour

	m.Start()
	m.Start()
	m.Stop()
	m.Stop()
}

func TestRestartAfterStop(t *testing.T) {
	payments := &fakeStuckLister{}
	m := NewManager(&fakeReconciler{}, payments)
	m.interval = 5 * time.Millisecond

	m.Start()
	m.Stop()
	before := payments.sweepCount()

	// A restarted manager must keep sweeping.
	m.Start()
	assert.Eventually(t, func() bool {
		return payments.sweepCount() > before
	}, time.Second, 5*time.Millisecond)
	m.Stop()
}
