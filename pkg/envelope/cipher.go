package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// KeySize is the AES-256 key length for both KEKs and DEKs.
const KeySize = 32

const (
	ivSize       = 12
	tagSize      = aes.BlockSize
	versionMagic = byte('W')
)

// ErrKeyUnwrap reports a DEK that could not be unwrapped: wrong or
// rotated KEK, or corrupted wrap ciphertext.
var ErrKeyUnwrap = errors.New("key unwrap failure")

// ErrDecryption reports a credential field that could not be decrypted:
// wrong DEK, tampered ciphertext, or mismatched associated data.
var ErrDecryption = errors.New("decryption failure")

// Cipher performs authenticated encryption with associated data.
type Cipher interface {
	Encrypt(aad, plainText []byte) ([]byte, error)
	Decrypt(aad, packedText []byte) ([]byte, error)
}

type symmetric struct {
	aesgcm cipher.AEAD
}

// NewCipher builds an AES-256-GCM cipher over a raw 32-byte key.
func NewCipher(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}

	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}
	return &symmetric{aesgcm: aesgcm}, nil
}

func (s *symmetric) Encrypt(aad, plainText []byte) ([]byte, error) {
	// Never use more than 2^32 random nonces with a given key because of
	// the risk of a repeat.
	nonce, err := RandomBytes(ivSize)
	if err != nil {
		return nil, err
	}

	cipherTextWithTag := s.aesgcm.Seal(nil, nonce, plainText, aad)
	return packCipherData(cipherTextWithTag, nonce), nil
}

func (s *symmetric) Decrypt(aad, packedText []byte) ([]byte, error) {
	cipherText, iv, err := unpackCipherData(packedText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	plainText, err := s.aesgcm.Open(nil, iv, cipherText, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return plainText, nil
}

// RandomBytes returns size cryptographically random bytes.
func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}
	return value, nil
}

// Packed layout: magic | tag | iv | ciphertext.
func packCipherData(cipherTextWithTag, iv []byte) []byte {
	tagStart := len(cipherTextWithTag) - tagSize
	tag := cipherTextWithTag[tagStart:]
	cipherText := cipherTextWithTag[:tagStart]

	data := make([]byte, 0, 1+tagSize+ivSize+len(cipherText))
	data = append(data, versionMagic)
	data = append(data, tag...)
	data = append(data, iv...)
	return append(data, cipherText...)
}

func unpackCipherData(packedText []byte) (cipherText, iv []byte, err error) {
	if len(packedText) < 1+tagSize+ivSize {
		return nil, nil, errors.New("ciphertext too short")
	}
	if packedText[0] != versionMagic {
		return nil, nil, fmt.Errorf("unknown ciphertext version %#x", packedText[0])
	}

	tag := packedText[1 : 1+tagSize]
	iv = packedText[1+tagSize : 1+tagSize+ivSize]
	cipherText = append([]byte{}, packedText[1+tagSize+ivSize:]...)

	// GCM expects the tag appended to the ciphertext.
	return append(cipherText, tag...), iv, nil
}
