// Package envelope implements the two-tier key hierarchy protecting
// integration credentials.
//
// The operator-supplied Key-Encryption-Key (KEK) wraps one
// Data-Encryption-Key (DEK) per integration or account; the DEK encrypts
// individual credential fields. Only wrapped DEKs and field ciphertexts
// are ever persisted. The plaintext DEK is re-derived by unwrapping on
// every credential access and is never cached, so key material does not
// outlive the call that needs it.
//
// All encryption is AES-256-GCM with the owning row's identity as
// associated data, so a ciphertext moved to another row fails to
// decrypt. Unwrap failures surface as ErrKeyUnwrap and field decryption
// failures as ErrDecryption, never as empty credentials.
//
// The KEK is a constructor parameter, never read from ambient state:
//
//	keyring, err := envelope.NewKeyring(masterKey)
//	vault := envelope.NewAccountVault(scopedAdapter, keyring)
package envelope
