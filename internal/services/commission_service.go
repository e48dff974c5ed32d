package services

import (
	"fmt"

	"settlement-service/internal/models"

	"gorm.io/gorm"
)

// Commission depth and rate tables. The two schemes share the chain walk
// but nothing else: personal bonus credits wallets, team investment only
// records attribution.
const (
	PersonalBonusDepth  = 3
	TeamInvestmentDepth = 5
)

var personalBonusRates = map[int]float64{
	1: 4.0,
	2: 1.5,
	3: 0.5,
}

var teamInvestmentRates = map[int]float64{
	1: 10.0,
	2: 5.0,
	3: 3.0,
	4: 2.0,
	5: 1.0,
}

// RateFor returns the percentage for a scheme at a 1-based chain level,
// zero beyond the scheme's depth.
func RateFor(scheme string, level int) float64 {
	switch scheme {
	case models.SchemePersonalBonus:
		return personalBonusRates[level]
	case models.SchemeTeamInvestment:
		return teamInvestmentRates[level]
	}
	return 0
}

type CommissionService struct {
	DB      *gorm.DB
	Ledger  *LedgerService
	Network *NetworkService
}

func NewCommissionService(db *gorm.DB, ledger *LedgerService, network *NetworkService) *CommissionService {
	return &CommissionService{DB: db, Ledger: ledger, Network: network}
}

// DistributeReferralBonusTx pays the personal bonus up the payer's sponsor
// chain. Each eligible ancestor gets a paid award plus a completed wallet
// credit referencing it. Runs inside the settlement transaction; any error
// aborts the whole settlement.
func (s *CommissionService) DistributeReferralBonusTx(tx *gorm.DB, payment *models.Payment, payerName string) ([]models.CommissionAward, error) {
	upline, err := s.Network.UplineMembersTx(tx, payment.PayerId, PersonalBonusDepth)
	if err != nil {
		return nil, err
	}

	awards := make([]models.CommissionAward, 0, len(upline))
	for _, member := range upline {
		rate := RateFor(models.SchemePersonalBonus, member.Level)
		if rate <= 0 {
			continue
		}
		amount := payment.Amount * rate / 100

		award := models.CommissionAward{
			BeneficiaryId:   member.UserId,
			Amount:          amount,
			Scheme:          models.SchemePersonalBonus,
			Level:           member.Level,
			SourcePaymentId: payment.ID,
			Paid:            true,
		}
		if err := tx.Create(&award).Error; err != nil {
			return nil, err
		}

		_, err := s.Ledger.CreditTx(tx, EntryParams{
			OwnerId:     member.UserId,
			Amount:      amount,
			Status:      models.EntryCompleted,
			Description: fmt.Sprintf("Level %d referral bonus from %s", member.Level, payerName),
			SourceRef:   award.ID,
		})
		if err != nil {
			return nil, err
		}

		awards = append(awards, award)
	}

	return awards, nil
}

// RecordTeamInvestmentsTx attributes the new investment to up to five
// upline members. Informational bookkeeping tied to the investment; no
// wallet is credited here.
func (s *CommissionService) RecordTeamInvestmentsTx(tx *gorm.DB, investment *models.Investment, payment *models.Payment) ([]models.TeamInvestment, error) {
	upline, err := s.Network.UplineMembersTx(tx, investment.OwnerId, TeamInvestmentDepth)
	if err != nil {
		return nil, err
	}

	records := make([]models.TeamInvestment, 0, len(upline))
	for _, member := range upline {
		rate := RateFor(models.SchemeTeamInvestment, member.Level)
		if rate <= 0 {
			continue
		}
		amount := investment.Principal * rate / 100

		record := models.TeamInvestment{
			InvestmentId: investment.ID,
			TeamMemberId: member.UserId,
			Amount:       amount,
			Level:        member.Level,
		}
		if err := tx.Create(&record).Error; err != nil {
			return nil, err
		}

		award := models.CommissionAward{
			BeneficiaryId:   member.UserId,
			Amount:          amount,
			Scheme:          models.SchemeTeamInvestment,
			Level:           member.Level,
			SourcePaymentId: payment.ID,
			Paid:            false,
		}
		if err := tx.Create(&award).Error; err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// AwardsForPayment lists both schemes' awards produced by one payment.
func (s *CommissionService) AwardsForPayment(paymentID string) ([]models.CommissionAward, error) {
	var awards []models.CommissionAward
	err := s.DB.Where("source_payment_id = ?", paymentID).
		Order("scheme, level").Find(&awards).Error
	return awards, err
}
