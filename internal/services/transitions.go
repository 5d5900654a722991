package services

import (
	"strings"

	"github.com/diewo77/go-sourcing/internal/models"
)

type turn struct {
	status models.NegotiationStatus
	actor  models.Actor
}

// counterOfferMoves is the only source of truth for counter-offer transitions.
// Admin moves the record into seller_* and customer_* states; counterparties only move it
// back into admin_* states. admin_customer_counter_offer loops into the next customer round.
var counterOfferMoves = map[turn]models.NegotiationStatus{
	{models.StatusAdminPending, models.ActorAdmin}:              models.StatusSellerEmail,
	{models.StatusSellerEmail, models.ActorSeller}:              models.StatusAdminCounterOffer,
	{models.StatusAdminCounterOffer, models.ActorAdmin}:         models.StatusSellerPending,
	{models.StatusSellerPending, models.ActorSeller}:            models.StatusAdminResponded,
	{models.StatusAdminResponded, models.ActorAdmin}:            models.StatusSellerCounterOffer,
	{models.StatusSellerCounterOffer, models.ActorSeller}:       models.StatusAdminToCustomerPending,
	{models.StatusAdminToCustomerPending, models.ActorAdmin}:    models.StatusCustomerResponded,
	{models.StatusCustomerResponded, models.ActorCustomer}:      models.StatusAdminCustomerCounterOffer,
	{models.StatusAdminCustomerCounterOffer, models.ActorAdmin}: models.StatusCustomerResponded,
}

// NextStatus returns the status a counter-offer by actor leads to.
func NextStatus(current models.NegotiationStatus, actor models.Actor) (models.NegotiationStatus, bool) {
	next, ok := counterOfferMoves[turn{current, actor}]
	return next, ok
}

// TurnOwner returns the actor expected to move next, or "" for terminal states.
func TurnOwner(s models.NegotiationStatus) models.Actor {
	for t := range counterOfferMoves {
		if t.status == s {
			return t.actor
		}
	}
	return ""
}

// CanClose reports whether actor may accept or reject from s. Only the turn owner can,
// and only from admin_*, *_responded or *_counter_offer statuses.
func CanClose(s models.NegotiationStatus, actor models.Actor) bool {
	if s.IsTerminal() || TurnOwner(s) != actor {
		return false
	}
	name := string(s)
	return strings.HasPrefix(name, "admin_") ||
		strings.HasSuffix(name, "_responded") ||
		strings.HasSuffix(name, "_counter_offer")
}
