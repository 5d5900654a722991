package services

import (
	"testing"

	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNextStatus_Table(t *testing.T) {
	walk := []struct {
		from  models.NegotiationStatus
		actor models.Actor
		to    models.NegotiationStatus
	}{
		{models.StatusAdminPending, models.ActorAdmin, models.StatusSellerEmail},
		{models.StatusSellerEmail, models.ActorSeller, models.StatusAdminCounterOffer},
		{models.StatusAdminCounterOffer, models.ActorAdmin, models.StatusSellerPending},
		{models.StatusSellerPending, models.ActorSeller, models.StatusAdminResponded},
		{models.StatusAdminResponded, models.ActorAdmin, models.StatusSellerCounterOffer},
		{models.StatusSellerCounterOffer, models.ActorSeller, models.StatusAdminToCustomerPending},
		{models.StatusAdminToCustomerPending, models.ActorAdmin, models.StatusCustomerResponded},
		{models.StatusCustomerResponded, models.ActorCustomer, models.StatusAdminCustomerCounterOffer},
		{models.StatusAdminCustomerCounterOffer, models.ActorAdmin, models.StatusCustomerResponded},
	}
	for _, w := range walk {
		got, ok := NextStatus(w.from, w.actor)
		assert.True(t, ok, "%s by %s", w.from, w.actor)
		assert.Equal(t, w.to, got)
	}
}

func TestNextStatus_RejectsWrongActor(t *testing.T) {
	cases := []struct {
		from  models.NegotiationStatus
		actor models.Actor
	}{
		{models.StatusAdminPending, models.ActorSeller},
		{models.StatusAdminPending, models.ActorCustomer},
		{models.StatusSellerEmail, models.ActorAdmin},
		{models.StatusCustomerResponded, models.ActorSeller},
		{models.StatusAccepted, models.ActorAdmin},
		{models.StatusRejected, models.ActorCustomer},
	}
	for _, c := range cases {
		_, ok := NextStatus(c.from, c.actor)
		assert.False(t, ok, "%s by %s", c.from, c.actor)
	}
}

func TestCanClose(t *testing.T) {
	assert.True(t, CanClose(models.StatusAdminPending, models.ActorAdmin))
	assert.True(t, CanClose(models.StatusAdminCustomerCounterOffer, models.ActorAdmin))
	assert.True(t, CanClose(models.StatusCustomerResponded, models.ActorCustomer))
	assert.True(t, CanClose(models.StatusSellerCounterOffer, models.ActorSeller))

	assert.False(t, CanClose(models.StatusSellerEmail, models.ActorSeller), "seller_email is not closable")
	assert.False(t, CanClose(models.StatusSellerPending, models.ActorSeller), "seller_pending is not closable")
	assert.False(t, CanClose(models.StatusCustomerResponded, models.ActorAdmin), "not the turn owner")
	assert.False(t, CanClose(models.StatusAccepted, models.ActorAdmin))
}

func TestTurnOwner(t *testing.T) {
	assert.Equal(t, models.ActorSeller, TurnOwner(models.StatusSellerPending))
	assert.Equal(t, models.ActorCustomer, TurnOwner(models.StatusCustomerResponded))
	assert.Equal(t, models.Actor(""), TurnOwner(models.StatusRejected))
}
