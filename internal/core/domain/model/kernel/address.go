package kernel

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"blockdelivery/internal/pkg/errs"
)

// AddressSize is the fixed byte length of a derived record address.
const AddressSize = 32

// Seed constraints for address derivation. A derivation takes between one and
// MaxSeeds seeds, each between one and MaxSeedLen bytes.
const (
	MaxSeeds   = 16
	MaxSeedLen = 32
)

// OrderNamespace is the namespace seed under which order record addresses are derived.
var OrderNamespace = []byte("order")

// CounterNamespace is the namespace seed under which the counter registry address is derived.
var CounterNamespace = []byte("counter")

// ErrInvalidSeedEncoding indicates a malformed seed sequence passed to address
// derivation: no seeds, too many seeds, or a seed that is empty or oversized.
var ErrInvalidSeedEncoding = errs.NewValueIsInvalidError("seed encoding")

// ErrAddressIsNotConstructed indicates that an Address was not properly initialized
// through one of the constructor functions. Returned when validating a zero-value Address.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"Address must be created via DeriveAddress, AddressFromBytes, or AddressFromString")

// Address is a value object holding the deterministic storage location of a
// record in the ledger. Equal seed sequences always derive equal addresses;
// distinct sequences derive distinct addresses up to hash collision.
//
// The zero value of Address is invalid and must be constructed using one of the
// provided factory functions. Address is immutable and safe for concurrent use.
type Address struct {
	raw [AddressSize]byte
}

// DeriveAddress derives a record address from an ordered seed sequence.
// The derivation is pure and deterministic: it hashes a length-prefixed
// concatenation of the seeds, so no two distinct seed sequences collapse to
// the same input ("ab","c" never collides with "a","bc").
//
// Returns ErrInvalidSeedEncoding if the sequence is empty, has more than
// MaxSeeds entries, or any seed is empty or longer than MaxSeedLen bytes.
//
// Example:
//
//	addr, err := kernel.DeriveAddress(kernel.OrderNamespace, kernel.EncodeOrderID(7))
//	if err != nil {
//	    // malformed seeds
//	}
func DeriveAddress(seeds ...[]byte) (Address, error) {
	if len(seeds) == 0 || len(seeds) > MaxSeeds {
		return Address{}, ErrInvalidSeedEncoding
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) == 0 || len(seed) > MaxSeedLen {
			return Address{}, ErrInvalidSeedEncoding
		}
		h.Write([]byte{byte(len(seed))})
		h.Write(seed)
	}

	var addr Address
	copy(addr.raw[:], h.Sum(nil))
	return addr, nil
}

// DeriveOrderAddress derives the canonical address of an order record from its
// global id: seeds ("order", id little-endian). This is the scheme the system
// uses uniformly; see DeriveOwnedOrderAddress for the owner-scoped alternative.
func DeriveOrderAddress(orderID uint64) (Address, error) {
	return DeriveAddress(OrderNamespace, EncodeOrderID(orderID))
}

// DeriveOwnedOrderAddress derives an order record address scoped by its owner:
// seeds ("order", customer, id little-endian). Deployments using this scheme
// must apply it uniformly; mixing schemes breaks lookups.
func DeriveOwnedOrderAddress(customer Identity, orderID uint64) (Address, error) {
	if err := customer.Validate(); err != nil {
		return Address{}, err
	}
	return DeriveAddress(OrderNamespace, customer.Bytes(), EncodeOrderID(orderID))
}

// DeriveCounterAddress derives the address of the single shared counter registry record.
func DeriveCounterAddress() (Address, error) {
	return DeriveAddress(CounterNamespace)
}

// EncodeOrderID encodes a numeric order id seed as fixed-width 8-byte little-endian.
func EncodeOrderID(id uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, id)
	return buf
}

// AddressFromBytes creates an Address from a byte slice.
// The slice must be exactly AddressSize bytes long and not all zero.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressSize {
		return Address{}, errs.NewValueIsInvalidErrorWithCause(
			"address", fmt.Errorf("expected %d bytes, got %d", AddressSize, len(b)))
	}

	var addr Address
	copy(addr.raw[:], b)
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}

	return addr, nil
}

// AddressFromString parses an Address from its hex string representation.
func AddressFromString(s string) (Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, errs.NewValueIsInvalidErrorWithCause("address", err)
	}

	return AddressFromBytes(raw)
}

// String returns the hex representation of the address.
func (a Address) String() string {
	return hex.EncodeToString(a.raw[:])
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a.raw[:])
	return b
}

// IsEqual compares two addresses for equality.
func (a Address) IsEqual(other Address) bool {
	return a.raw == other.raw
}

// Validate checks if the Address is properly constructed.
// Returns ErrAddressIsNotConstructed for the zero value.
func (a Address) Validate() error {
	if a.raw == [AddressSize]byte{} {
		return ErrAddressIsNotConstructed
	}
	return nil
}
