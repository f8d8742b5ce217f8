// Package repository implements MySQL persistence for the seat
// inventory, the booking ledger and user accounts.  Failure scenarios
// that handlers must distinguish surface as the sentinel errors of the
// booking package (plus ErrEmailExists on user creation); everything
// else is returned as-is.
package repository
