package services

import (
	"testing"
	"time"

	"settlement-service/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newSettlementStack(db *gorm.DB) (*SettlementService, *LedgerService) {
	ledger := NewLedgerService(db)
	network := NewNetworkService(db)
	commission := NewCommissionService(db, ledger, network)
	return NewSettlementService(db, ledger, commission, nil), ledger
}

// Fixture: sponsor chain a<-b<-c<-d, e pays. Level 1 ancestor is a.
func chainFixture(t *testing.T, db *gorm.DB) (payer *models.User, upline []*models.User) {
	d := createUser(t, db, "d", nil)
	c := createUser(t, db, "c", &d.ID)
	b := createUser(t, db, "b", &c.ID)
	a := createUser(t, db, "a", &b.ID)
	e := createUser(t, db, "e", &a.ID)
	return e, []*models.User{a, b, c, d}
}

func TestCreatePayment(t *testing.T) {
	db := setupTestDB(t)
	svc, ledger := newSettlementStack(db)

	payer := createUser(t, db, "payer", nil)
	plan := createPlan(t, db, "Silver", 50000, 12, 10)

	payment, err := svc.CreatePayment(CreatePaymentDTO{
		PayerId:     payer.ID,
		PlanId:      plan.ID,
		Amount:      50000,
		ExternalRef: "UPI-REF-001",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)

	// The optimistic hold exists but the balance is untouched.
	var entry models.LedgerEntry
	assert.NoError(t, db.Where("source_ref = ?", payment.ID).First(&entry).Error)
	assert.Equal(t, models.EntryPending, entry.Status)
	assert.Equal(t, models.DirectionCredit, entry.Direction)

	wallet, err := ledger.GetWallet(payer.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, wallet.Balance)
}

func TestCreatePaymentValidation(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSettlementStack(db)

	payer := createUser(t, db, "payer", nil)
	plan := createPlan(t, db, "Silver", 50000, 12, 10)

	_, err := svc.CreatePayment(CreatePaymentDTO{PayerId: payer.ID, PlanId: plan.ID, Amount: 0, ExternalRef: "X"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreatePayment(CreatePaymentDTO{PayerId: payer.ID, PlanId: plan.ID, Amount: 100, ExternalRef: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreatePayment(CreatePaymentDTO{PayerId: payer.ID, PlanId: "missing", Amount: 100, ExternalRef: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	inactive := createPlan(t, db, "Retired", 1000, 6, 10)
	db.Model(&models.Plan{}).Where("id = ?", inactive.ID).Update("active", false)
	_, err = svc.CreatePayment(CreatePaymentDTO{PayerId: payer.ID, PlanId: inactive.ID, Amount: 100, ExternalRef: "X"})
	assert.ErrorIs(t, err, ErrValidation)

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestApproveSettlesPaymentAndDistributesCommissions(t *testing.T) {
	db := setupTestDB(t)
	svc, ledger := newSettlementStack(db)

	payer, upline := chainFixture(t, db)
	plan := createPlan(t, db, "Gold", 100000, 12, 10)

	payment, err := svc.CreatePayment(CreatePaymentDTO{
		PayerId:     payer.ID,
		PlanId:      plan.ID,
		Amount:      100000,
		ExternalRef: "UPI-REF-100",
	})
	assert.NoError(t, err)

	investment, err := svc.Approve(payment.ID, "verified")
	assert.NoError(t, err)
	assert.Equal(t, models.InvestmentActive, investment.Status)
	assert.Equal(t, 100000.0, investment.Principal)
	assert.Equal(t, 0.0, investment.AccruedReturns)
	assert.Equal(t, investment.StartDate.AddDate(0, 0, 360).Unix(), investment.EndDate.Unix())

	var got models.Payment
	db.Where("id = ?", payment.ID).First(&got)
	assert.Equal(t, models.PaymentApproved, got.Status)
	assert.Equal(t, "verified", got.Notes)

	// Principal credited to the payer.
	payerWallet, err := ledger.GetWallet(payer.ID)
	assert.NoError(t, err)
	assert.Equal(t, 100000.0, payerWallet.Balance)

	// Personal bonus: 4% / 1.5% / 0.5%, nothing at level 4.
	expected := []float64{4000, 1500, 500, 0}
	for i, ancestor := range upline {
		wallet, err := ledger.GetOrCreateWalletTx(db, ancestor.ID)
		assert.NoError(t, err)
		assert.Equal(t, expected[i], wallet.Balance, "wallet of upline level %d", i+1)
	}

	// Team investment records: 10% / 5% / 3% / 2%, independent of bonus.
	var teams []models.TeamInvestment
	db.Where("investment_id = ?", investment.ID).Order("level").Find(&teams)
	assert.Len(t, teams, 4)
	teamAmounts := []float64{10000, 5000, 3000, 2000}
	for i, record := range teams {
		assert.Equal(t, upline[i].ID, record.TeamMemberId)
		assert.Equal(t, i+1, record.Level)
		assert.Equal(t, teamAmounts[i], record.Amount)
	}

	// Team credits never touch wallets: upline balances checked above
	// already exclude them.
	awards, err := svc.Commission.AwardsForPayment(payment.ID)
	assert.NoError(t, err)
	assert.Len(t, awards, 7)
	for i, award := range awards[:3] {
		assert.Equal(t, models.SchemePersonalBonus, award.Scheme)
		assert.Equal(t, i+1, award.Level)
		assert.Equal(t, upline[i].ID, award.BeneficiaryId)
		assert.True(t, award.Paid)
	}
	for i, award := range awards[3:] {
		assert.Equal(t, models.SchemeTeamInvestment, award.Scheme)
		assert.Equal(t, i+1, award.Level)
		assert.False(t, award.Paid)
	}

	// Profile aggregate.
	var profile models.Profile
	assert.NoError(t, db.Where("user_id = ?", payer.ID).First(&profile).Error)
	assert.Equal(t, plan.ID, profile.CurrentPlanId)
	assert.Equal(t, 100000.0, profile.PlanAmount)
	assert.Equal(t, 100000.0, profile.TotalInvestedAmount)

	// Ledger/cache consistency for everyone involved.
	for _, owner := range append([]*models.User{payer}, upline[:3]...) {
		result, err := ledger.Reconcile(owner.ID)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, result.Drift, "drift for %s", owner.Name)
	}
}

func TestApproveTwiceSettlesOnce(t *testing.T) {
	db := setupTestDB(t)
	svc, ledger := newSettlementStack(db)

	payer, _ := chainFixture(t, db)
	plan := createPlan(t, db, "Gold", 100000, 12, 10)
	payment, _ := svc.CreatePayment(CreatePaymentDTO{
		PayerId: payer.ID, PlanId: plan.ID, Amount: 100000, ExternalRef: "UPI-REF-101",
	})

	_, err := svc.Approve(payment.ID, "first")
	assert.NoError(t, err)

	_, err = svc.Approve(payment.ID, "second")
	assert.ErrorIs(t, err, ErrNotPending)

	var investments int64
	db.Model(&models.Investment{}).Where("owner_id = ?", payer.ID).Count(&investments)
	assert.Equal(t, int64(1), investments)

	var awards int64
	db.Model(&models.CommissionAward{}).Where("source_payment_id = ?", payment.ID).Count(&awards)
	assert.Equal(t, int64(7), awards)

	wallet, _ := ledger.GetWallet(payer.ID)
	assert.Equal(t, 100000.0, wallet.Balance)

	// Rejecting after approval is also refused.
	_, err = svc.Reject(payment.ID, "too late")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestRejectLeavesNoSideEffects(t *testing.T) {
	db := setupTestDB(t)
	svc, ledger := newSettlementStack(db)

	payer, upline := chainFixture(t, db)
	plan := createPlan(t, db, "Gold", 100000, 12, 10)
	payment, _ := svc.CreatePayment(CreatePaymentDTO{
		PayerId: payer.ID, PlanId: plan.ID, Amount: 100000, ExternalRef: "UPI-REF-102",
	})

	rejected, err := svc.Reject(payment.ID, "reference did not verify")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentRejected, rejected.Status)
	assert.Equal(t, "reference did not verify", rejected.Notes)

	// The hold is resolved rejected, never left pending.
	var entry models.LedgerEntry
	db.Where("source_ref = ?", payment.ID).First(&entry)
	assert.Equal(t, models.EntryRejected, entry.Status)

	wallet, _ := ledger.GetWallet(payer.ID)
	assert.Equal(t, 0.0, wallet.Balance)

	var investments, awards, teams int64
	db.Model(&models.Investment{}).Count(&investments)
	db.Model(&models.CommissionAward{}).Count(&awards)
	db.Model(&models.TeamInvestment{}).Count(&teams)
	assert.Equal(t, int64(0), investments)
	assert.Equal(t, int64(0), awards)
	assert.Equal(t, int64(0), teams)

	var profiles int64
	db.Model(&models.Profile{}).Count(&profiles)
	assert.Equal(t, int64(0), profiles)

	for _, ancestor := range upline {
		_, err := ledger.GetWallet(ancestor.ID)
		assert.ErrorIs(t, err, ErrNotFound, "no wallet should exist for %s", ancestor.Name)
	}
}

func TestApproveWithoutSponsorAwardsNothing(t *testing.T) {
	db := setupTestDB(t)
	svc, ledger := newSettlementStack(db)

	payer := createUser(t, db, "solo", nil)
	plan := createPlan(t, db, "Gold", 100000, 12, 10)
	payment, _ := svc.CreatePayment(CreatePaymentDTO{
		PayerId: payer.ID, PlanId: plan.ID, Amount: 100000, ExternalRef: "UPI-REF-103",
	})

	_, err := svc.Approve(payment.ID, "")
	assert.NoError(t, err)

	var awards, teams int64
	db.Model(&models.CommissionAward{}).Count(&awards)
	db.Model(&models.TeamInvestment{}).Count(&teams)
	assert.Equal(t, int64(0), awards)
	assert.Equal(t, int64(0), teams)

	wallet, _ := ledger.GetWallet(payer.ID)
	assert.Equal(t, 100000.0, wallet.Balance)
}

func TestApproveAbortsOnChainCycle(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSettlementStack(db)

	x := createUser(t, db, "x", nil)
	y := createUser(t, db, "y", &x.ID)
	db.Model(&models.User{}).Where("id = ?", x.ID).Update("sponsor_id", y.ID)
	payer := createUser(t, db, "payer", &x.ID)

	plan := createPlan(t, db, "Gold", 100000, 12, 10)
	payment, _ := svc.CreatePayment(CreatePaymentDTO{
		PayerId: payer.ID, PlanId: plan.ID, Amount: 100000, ExternalRef: "UPI-REF-104",
	})

	_, err := svc.Approve(payment.ID, "")
	assert.ErrorIs(t, err, ErrChainCycle)

	// Everything rolled back: the payment is still pending and can be
	// retried once the graph is repaired.
	var got models.Payment
	db.Where("id = ?", payment.ID).First(&got)
	assert.Equal(t, models.PaymentPending, got.Status)

	var investments int64
	db.Model(&models.Investment{}).Count(&investments)
	assert.Equal(t, int64(0), investments)

	var entry models.LedgerEntry
	db.Where("source_ref = ?", payment.ID).First(&entry)
	assert.Equal(t, models.EntryPending, entry.Status)
}

func TestApproveMissingPayment(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSettlementStack(db)

	_, err := svc.Approve("missing-id", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Reject("missing-id", "r")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveAccumulatesProfileAcrossPayments(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSettlementStack(db)

	payer := createUser(t, db, "repeat", nil)
	silver := createPlan(t, db, "Silver", 50000, 6, 10)
	gold := createPlan(t, db, "Gold", 100000, 12, 10)

	p1, _ := svc.CreatePayment(CreatePaymentDTO{PayerId: payer.ID, PlanId: silver.ID, Amount: 50000, ExternalRef: "R1"})
	_, err := svc.Approve(p1.ID, "")
	assert.NoError(t, err)

	p2, _ := svc.CreatePayment(CreatePaymentDTO{PayerId: payer.ID, PlanId: gold.ID, Amount: 100000, ExternalRef: "R2"})
	_, err = svc.Approve(p2.ID, "")
	assert.NoError(t, err)

	var profile models.Profile
	assert.NoError(t, db.Where("user_id = ?", payer.ID).First(&profile).Error)
	assert.Equal(t, gold.ID, profile.CurrentPlanId)
	assert.Equal(t, 150000.0, profile.PlanAmount)
	assert.Equal(t, 150000.0, profile.TotalInvestedAmount)
}

func TestApproveWithPrincipalCreditDisabled(t *testing.T) {
	db := setupTestDB(t)
	svc, ledger := newSettlementStack(db)
	svc.CreditPrincipal = false

	payer := createUser(t, db, "payer", nil)
	plan := createPlan(t, db, "Gold", 100000, 12, 10)
	payment, _ := svc.CreatePayment(CreatePaymentDTO{
		PayerId: payer.ID, PlanId: plan.ID, Amount: 100000, ExternalRef: "UPI-REF-105",
	})

	_, err := svc.Approve(payment.ID, "")
	assert.NoError(t, err)

	// The hold is resolved without crediting; nothing stays pending.
	var entry models.LedgerEntry
	db.Where("source_ref = ?", payment.ID).First(&entry)
	assert.Equal(t, models.EntryRejected, entry.Status)

	wallet, _ := ledger.GetWallet(payer.ID)
	assert.Equal(t, 0.0, wallet.Balance)
}

func TestPendingPaymentsListing(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSettlementStack(db)

	payer := createUser(t, db, "payer", nil)
	plan := createPlan(t, db, "Silver", 50000, 6, 10)

	first, _ := svc.CreatePayment(CreatePaymentDTO{PayerId: payer.ID, PlanId: plan.ID, Amount: 50000, ExternalRef: "L1"})
	time.Sleep(5 * time.Millisecond)
	second, _ := svc.CreatePayment(CreatePaymentDTO{PayerId: payer.ID, PlanId: plan.ID, Amount: 50000, ExternalRef: "L2"})

	page, err := svc.PendingPayments(1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)
	payments := page.Data.([]models.Payment)
	assert.Equal(t, first.ID, payments[0].ID, "pending queue is oldest first")

	_, err = svc.Approve(first.ID, "")
	assert.NoError(t, err)

	page, _ = svc.PendingPayments(1, 10)
	assert.Equal(t, int64(1), page.Count)
	assert.Equal(t, second.ID, page.Data.([]models.Payment)[0].ID)

	userPage, err := svc.UserPayments(payer.ID, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), userPage.Count)
}
