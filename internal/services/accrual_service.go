package services

import (
	"fmt"
	"log"
	"time"

	"settlement-service/internal/consumers"
	"settlement-service/internal/models"
	"settlement-service/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AccrualService keeps active investments earning until maturity. The
// interest sweep credits each investment once per monthly anchor day; the
// maturity sweep retires investments past their term.
type AccrualService struct {
	DB     *gorm.DB
	Ledger *LedgerService
	Queue  *asynq.Client
}

func NewAccrualService(db *gorm.DB, ledger *LedgerService, queue *asynq.Client) *AccrualService {
	return &AccrualService{DB: db, Ledger: ledger, Queue: queue}
}

// RunInterestSweep processes every active investment due for accrual at
// the given time. Failures are isolated per investment: one broken row
// never aborts the rest of the sweep.
func (s *AccrualService) RunInterestSweep(now time.Time) (int, error) {
	var investments []models.Investment
	if err := s.DB.Where("status = ?", models.InvestmentActive).Find(&investments).Error; err != nil {
		return 0, err
	}

	processed := 0
	for i := range investments {
		inv := &investments[i]
		if !shouldAccrue(inv, now) {
			continue
		}

		credited, err := s.accrueOne(inv, now)
		if err != nil {
			log.Printf("Error accruing interest for investment %s: %v", inv.ID, err)
			continue
		}
		if credited {
			processed++
		}
	}

	return processed, nil
}

func (s *AccrualService) accrueOne(inv *models.Investment, now time.Time) (bool, error) {
	amount := inv.Principal * (inv.AnnualRate / 100) / 12
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	credited := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Day-scoped compare-and-swap: a second sweep on the same
		// calendar day matches zero rows and credits nothing.
		res := tx.Model(&models.Investment{}).
			Where("id = ? AND status = ? AND (last_accrued_at IS NULL OR last_accrued_at < ?)",
				inv.ID, models.InvestmentActive, startOfDay).
			Updates(map[string]interface{}{
				"accrued_returns": gorm.Expr("accrued_returns + ?", amount),
				"last_accrued_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		_, err := s.Ledger.CreditTx(tx, EntryParams{
			OwnerId:     inv.OwnerId,
			Amount:      amount,
			Status:      models.EntryCompleted,
			Description: fmt.Sprintf("Monthly interest from %s plan", inv.PlanName),
			SourceRef:   inv.ID,
		})
		if err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if credited && s.Queue != nil {
		task, err := worker.NewInterestCreditedTask(consumers.InterestNoticeDTO{
			UserId:       inv.OwnerId,
			InvestmentId: inv.ID,
			PlanName:     inv.PlanName,
			Amount:       amount,
		})
		if err != nil {
			log.Printf("Failed to build interest notification: %v", err)
		} else if _, err := s.Queue.Enqueue(task); err != nil {
			log.Printf("Failed to enqueue interest notification: %v", err)
		}
	}

	return credited, nil
}

// shouldAccrue reports whether now is the investment's monthly anchor day:
// the start date's day-of-month, clamped to the last day of shorter
// months. The start month itself never accrues, and an investment already
// credited today is skipped.
func shouldAccrue(inv *models.Investment, now time.Time) bool {
	start := inv.StartDate
	if now.Year() == start.Year() && now.Month() == start.Month() {
		return false
	}

	anchor := start.Day()
	if last := daysInMonth(now.Year(), now.Month()); anchor > last {
		anchor = last
	}
	if now.Day() != anchor {
		return false
	}

	if inv.LastAccruedAt != nil {
		la := inv.LastAccruedAt
		if la.Year() == now.Year() && la.YearDay() == now.YearDay() {
			return false
		}
	}
	return true
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RunMaturitySweep marks every active investment past its end date as
// completed. Idempotent: completed investments no longer match.
func (s *AccrualService) RunMaturitySweep(now time.Time) (int64, error) {
	res := s.DB.Model(&models.Investment{}).
		Where("status = ? AND end_date <= ?", models.InvestmentActive, now).
		Update("status", models.InvestmentCompleted)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// StartScheduler runs the interest sweep daily at 01:00 and the maturity
// sweep at 02:00.
func (s *AccrualService) StartScheduler() {
	c := cron.New()

	_, err := c.AddFunc("0 1 * * *", func() {
		log.Println("Running scheduled interest sweep...")
		processed, err := s.RunInterestSweep(time.Now())
		if err != nil {
			log.Printf("Error in interest sweep: %v", err)
			return
		}
		log.Printf("Interest sweep credited %d investments", processed)
	})
	if err != nil {
		log.Printf("Error scheduling interest sweep: %v", err)
		return
	}

	_, err = c.AddFunc("0 2 * * *", func() {
		log.Println("Running scheduled maturity sweep...")
		completed, err := s.RunMaturitySweep(time.Now())
		if err != nil {
			log.Printf("Error in maturity sweep: %v", err)
			return
		}
		log.Printf("Maturity sweep completed %d investments", completed)
	})
	if err != nil {
		log.Printf("Error scheduling maturity sweep: %v", err)
		return
	}

	c.Start()
	log.Println("AccrualService scheduler started (daily sweeps at 01:00 and 02:00)")
}
