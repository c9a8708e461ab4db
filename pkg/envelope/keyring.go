package envelope

import (
	"fmt"
)

// Keyring wraps and unwraps DEKs under the operator KEK. It holds the
// KEK cipher only; plaintext DEKs exist solely in the return values of
// Unwrap and are never retained.
type Keyring struct {
	kek Cipher
}

// NewKeyring builds a keyring from the raw 32-byte master key. The key
// is an explicit parameter so tests can inject their own; nothing in
// this package reads the environment.
func NewKeyring(masterKey []byte) (*Keyring, error) {
	kek, err := NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("master key rejected: %w", err)
	}
	return &Keyring{kek: kek}, nil
}

// IssueDEK generates a fresh random DEK and returns it wrapped under the
// KEK, bound to owner as associated data. Only the wrapped form may be
// persisted.
func (k *Keyring) IssueDEK(owner string) ([]byte, error) {
	dek, err := RandomBytes(KeySize)
	if err != nil {
		return nil, err
	}
	wrapped, err := k.kek.Encrypt([]byte(owner), dek)
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

// Unwrap recovers the DEK cipher from its wrapped form. Failure (wrong
// or rotated KEK, corrupted ciphertext, wrong owner) is fatal
// for the credential access and surfaces as ErrKeyUnwrap, never as an
// empty key.
func (k *Keyring) Unwrap(wrapped []byte, owner string) (Cipher, error) {
	if len(wrapped) == 0 {
		return nil, fmt.Errorf("%w: no DEK issued for %s", ErrKeyUnwrap, owner)
	}

	dek, err := k.kek.Decrypt([]byte(owner), wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: owner %s", ErrKeyUnwrap, owner)
	}

	cipher, err := NewCipher(dek)
	if err != nil {
		return nil, fmt.Errorf("%w: owner %s: %v", ErrKeyUnwrap, owner, err)
	}
	return cipher, nil
}
