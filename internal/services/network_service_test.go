package services

import (
	"testing"

	"settlement-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestUplineMembersWalksChainInOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNetworkService(db)

	d := createUser(t, db, "d", nil)
	c := createUser(t, db, "c", &d.ID)
	b := createUser(t, db, "b", &c.ID)
	a := createUser(t, db, "a", &b.ID)
	e := createUser(t, db, "e", &a.ID)

	upline, err := svc.UplineMembers(e.ID, 5)
	assert.NoError(t, err)
	assert.Equal(t, []UplineMember{
		{UserId: a.ID, Level: 1},
		{UserId: b.ID, Level: 2},
		{UserId: c.ID, Level: 3},
		{UserId: d.ID, Level: 4},
	}, upline)

	// Depth bound cuts the walk short.
	upline, err = svc.UplineMembers(e.ID, 2)
	assert.NoError(t, err)
	assert.Len(t, upline, 2)
	assert.Equal(t, b.ID, upline[1].UserId)
}

func TestUplineMembersNoSponsor(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNetworkService(db)

	solo := createUser(t, db, "solo", nil)

	upline, err := svc.UplineMembers(solo.ID, 5)
	assert.NoError(t, err)
	assert.Empty(t, upline)
}

func TestUplineMembersDetectsCycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNetworkService(db)

	x := createUser(t, db, "x", nil)
	y := createUser(t, db, "y", &x.ID)
	// Corrupt the graph: x now points back down at y.
	db.Model(&models.User{}).Where("id = ?", x.ID).Update("sponsor_id", y.ID)
	z := createUser(t, db, "z", &x.ID)

	_, err := svc.UplineMembers(z.ID, 5)
	assert.ErrorIs(t, err, ErrChainCycle)
}

func TestUplineMembersSelfSponsor(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNetworkService(db)

	u := createUser(t, db, "u", nil)
	db.Model(&models.User{}).Where("id = ?", u.ID).Update("sponsor_id", u.ID)

	_, err := svc.UplineMembers(u.ID, 5)
	assert.ErrorIs(t, err, ErrChainCycle)
}

func TestUplineMembersDanglingSponsorEndsChain(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNetworkService(db)

	ghost := "00000000-0000-0000-0000-000000000000"
	u := createUser(t, db, "u", &ghost)

	upline, err := svc.UplineMembers(u.ID, 5)
	assert.NoError(t, err)
	assert.Empty(t, upline)
}

func TestRateTables(t *testing.T) {
	assert.Equal(t, 4.0, RateFor(models.SchemePersonalBonus, 1))
	assert.Equal(t, 1.5, RateFor(models.SchemePersonalBonus, 2))
	assert.Equal(t, 0.5, RateFor(models.SchemePersonalBonus, 3))
	assert.Equal(t, 0.0, RateFor(models.SchemePersonalBonus, 4))

	assert.Equal(t, 10.0, RateFor(models.SchemeTeamInvestment, 1))
	assert.Equal(t, 5.0, RateFor(models.SchemeTeamInvestment, 2))
	assert.Equal(t, 3.0, RateFor(models.SchemeTeamInvestment, 3))
	assert.Equal(t, 2.0, RateFor(models.SchemeTeamInvestment, 4))
	assert.Equal(t, 1.0, RateFor(models.SchemeTeamInvestment, 5))
	assert.Equal(t, 0.0, RateFor(models.SchemeTeamInvestment, 6))

	assert.Equal(t, 0.0, RateFor("unknown", 1))
}
