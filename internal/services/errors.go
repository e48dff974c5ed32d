package services

import "errors"

// Sentinel errors returned by the settlement and ledger services. Handlers
// map these to HTTP statuses with errors.Is.
//
// There is no separate concurrency-conflict sentinel: a payment race loses
// the status CAS and surfaces as ErrNotPending, and wallet races are
// resolved by single atomic updates, failing only as
// ErrInsufficientBalance.
var (
	// ErrValidation covers bad input caught before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotPending is the idempotency outcome: the payment already left
	// the pending state. Callers treat it as "already processed", not a
	// fault.
	ErrNotPending = errors.New("payment already processed")

	// ErrEntryNotPending guards the ledger status transition.
	ErrEntryNotPending = errors.New("ledger entry already resolved")

	// ErrInsufficientBalance: a completed debit would drive the balance
	// negative. The entry is not created.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrChainCycle: the sponsor chain loops back on itself. Aborts the
	// whole settlement; truncating the walk would misdistribute
	// commissions.
	ErrChainCycle = errors.New("referral chain cycle detected")
)
