package sweeper

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/imobipro/imobipro-api/app/repository"
	"github.com/imobipro/imobipro-api/internal/pkg/provision"
)

const (
	defaultInterval   = 10 * time.Minute
	defaultStuckAfter = 30 * time.Minute
	reconcileTimeout  = 20 * time.Second
)

// Reconciler is the slice of the provisioning service the sweeper drives.
type Reconciler interface {
	Reconcile(ctx context.Context, paymentID string) (*provision.ReconcileResult, error)
}

// Manager re-drives provisioning for approved payments that never finished.
// The webhook path is the primary driver; this loop is the safety net for
// the case where the gateway has exhausted its retries while the backend
// (database, SMTP relay) was unhealthy.
type Manager struct {
	service  Reconciler
	payments repository.PaymentRepository

	interval   time.Duration
	stuckAfter time.Duration

	ticker  *time.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewManager(service Reconciler, payments repository.PaymentRepository) *Manager {
	return &Manager{
		service:    service,
		payments:   payments,
		interval:   defaultInterval,
		stuckAfter: defaultStuckAfter,
	}
}

// Start launches the background sweep loop.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true

	// Fresh channel and ticker on every start, so a stopped manager can
	// be started again.
	stopCh := make(chan struct{})
	ticker := time.NewTicker(m.interval)
	m.stopCh = stopCh
	m.ticker = ticker

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-stopCh:
				return
			}
		}
	}()

	log.Printf("provisioning sweeper started (interval %s, stuck after %s)", m.interval, m.stuckAfter)
}

// Stop stops the sweep loop and waits for an in-flight sweep to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false

	m.ticker.Stop()
	close(m.stopCh)
	m.wg.Wait()
}

// Sweep reconciles every approved-but-unprovisioned payment older than the
// stuck threshold. Reconciliation is idempotent, so racing a late webhook
// delivery is harmless. Returns how many payments were retried.
func (m *Manager) Sweep() int {
	cutoff := time.Now().Add(-m.stuckAfter)
	stuck, err := m.payments.ListApprovedUnprovisioned(cutoff)
	if err != nil {
		log.Printf("sweeper: listing stuck payments failed: %v", err)
		return 0
	}

	for _, payment := range stuck {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		result, err := m.service.Reconcile(ctx, payment.MPPaymentID)
		cancel()
		if err != nil {
			log.Printf("sweeper: payment %s still stuck: %v", payment.MPPaymentID, err)
			continue
		}
		log.Printf("sweeper: payment %s resolved (%s)", payment.MPPaymentID, result.Outcome)
	}
	return len(stuck)
}
