/**
 * @description
 * This file implements the opt-in demo traffic generator. On a cron schedule
 * it applies a random deposit, withdrawal or transfer through the documented
 * ledger operations. It is a collaborator of the core, not part of it: a tick
 * whose precondition fails (for example a withdrawal against an empty
 * account) is logged and skipped, never substituted with a different
 * operation.
 *
 * @dependencies
 * - github.com/robfig/cron/v3: Tick scheduling.
 * - github.com/shopspring/decimal: Random amounts at exact 2-digit scale.
 */

package app

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/coreledger/ledger-service/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

const simulatorTickTimeout = 10 * time.Second

// Simulator drives random ledger traffic for demos and dashboard testing.
type Simulator struct {
	service  *Service
	schedule string
	notify   func()
	cron     *cron.Cron
	rng      *rand.Rand
}

// NewSimulator creates a simulator that applies one random operation per
// schedule tick. notify, if non-nil, is called after each successful
// operation so the dashboard broadcaster can push a fresh snapshot.
func NewSimulator(service *Service, schedule string, notify func()) *Simulator {
	return &Simulator{
		service:  service,
		schedule: schedule,
		notify:   notify,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start schedules the simulator. It fails if the cron expression is invalid.
func (s *Simulator) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.tick); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	log.Printf("level=info component=simulator msg=\"simulator started\" schedule=%q", s.schedule)
	return nil
}

// Stop halts scheduling. A tick already in flight finishes.
func (s *Simulator) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Simulator) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), simulatorTickTimeout)
	defer cancel()

	accounts, err := s.service.ListAccounts(ctx)
	if err != nil {
		log.Printf("level=warn component=simulator msg=\"tick skipped; account listing failed\" err=%v", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	amount := s.randomAmount()
	var opErr error
	op := s.rng.Intn(3)
	if op == 2 && len(accounts) < 2 {
		op = s.rng.Intn(2)
	}

	switch op {
	case 0:
		target := accounts[s.rng.Intn(len(accounts))]
		_, opErr = s.service.Deposit(ctx, target.ID, amount, "Simulated deposit")
	case 1:
		target := accounts[s.rng.Intn(len(accounts))]
		_, opErr = s.service.Withdraw(ctx, target.ID, amount, "Simulated withdrawal")
	default:
		fromIdx := s.rng.Intn(len(accounts))
		toIdx := s.rng.Intn(len(accounts) - 1)
		if toIdx >= fromIdx {
			toIdx++
		}
		_, _, opErr = s.service.Transfer(ctx, accounts[fromIdx].ID, accounts[toIdx].ID, amount, "Simulated transfer")
	}

	if opErr != nil {
		// Failed preconditions are skipped, never replaced by another
		// operation.
		if errors.Is(opErr, domain.ErrInsufficientFunds) {
			log.Printf("level=info component=simulator msg=\"tick skipped\" reason=insufficient_funds")
			return
		}
		log.Printf("level=warn component=simulator msg=\"tick failed\" err=%v", opErr)
		return
	}

	if s.notify != nil {
		s.notify()
	}
}

// randomAmount returns a value between 10.00 and 500.00 at exact 2-digit
// scale.
func (s *Simulator) randomAmount() domain.Money {
	cents := s.rng.Int63n(49001) + 1000
	return domain.NewMoney(decimal.New(cents, -2))
}
