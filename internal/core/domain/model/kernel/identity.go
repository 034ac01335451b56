package kernel

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"blockdelivery/internal/pkg/errs"
)

// IdentitySize is the fixed byte length of an actor identity token.
const IdentitySize = 32

// ErrIdentityIsNotConstructed indicates that an Identity was not properly initialized
// through one of the constructor functions. Returned when validating a zero-value Identity.
var ErrIdentityIsNotConstructed = errs.NewValueIsRequiredError(
	"Identity must be created via IdentityFromBytes, IdentityFromString, or NewRandomIdentity")

// Identity is a value object representing an opaque, comparable actor reference:
// a customer or a courier. The core never interprets its contents; authentication
// of identities is the responsibility of the surrounding signing infrastructure.
//
// The zero value of Identity is invalid and must be constructed using one of the
// provided factory functions. Identity is immutable and safe for concurrent use.
//
// Example usage:
//
//	customer, err := kernel.IdentityFromString("8f14e45fceea167a5a36dedd4bea2543...")
//	if err != nil {
//	    // handle error
//	}
//	if customer.IsEqual(record.Customer()) {
//	    // same actor
//	}
type Identity struct {
	token [IdentitySize]byte
}

// IdentityFromBytes creates an Identity from a byte slice.
// The slice must be exactly IdentitySize bytes long and not all zero.
func IdentityFromBytes(b []byte) (Identity, error) {
	if len(b) != IdentitySize {
		return Identity{}, errs.NewValueIsInvalidErrorWithCause(
			"identity", fmt.Errorf("expected %d bytes, got %d", IdentitySize, len(b)))
	}

	var id Identity
	copy(id.token[:], b)
	if err := id.Validate(); err != nil {
		return Identity{}, err
	}

	return id, nil
}

// IdentityFromString parses an Identity from its hex string representation.
// This function is typically used when accepting identities from transport
// layers or reconstructing them from persistence.
func IdentityFromString(s string) (Identity, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Identity{}, errs.NewValueIsInvalidErrorWithCause("identity", err)
	}

	return IdentityFromBytes(raw)
}

// NewRandomIdentity generates a random Identity.
// Intended for tests and local development where no real signing keys exist.
func NewRandomIdentity() Identity {
	var id Identity
	if _, err := rand.Read(id.token[:]); err != nil {
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	return id
}

// String returns the hex representation of the identity token.
func (i Identity) String() string {
	return hex.EncodeToString(i.token[:])
}

// Bytes returns a copy of the raw identity token.
func (i Identity) Bytes() []byte {
	b := make([]byte, IdentitySize)
	copy(b, i.token[:])
	return b
}

// IsEqual compares two identities for equality.
func (i Identity) IsEqual(other Identity) bool {
	return i.token == other.token
}

// Validate checks if the Identity is properly constructed.
// Returns ErrIdentityIsNotConstructed for the zero value.
func (i Identity) Validate() error {
	if i.token == [IdentitySize]byte{} {
		return ErrIdentityIsNotConstructed
	}
	return nil
}
