package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tokenSize     = 32

	// Customers read references back over the phone: no 0/O or 1/I/L.
	referenceAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	ReferenceSize     = 10
)

// NewToken returns an opaque ID for drafts and preview handles.
func NewToken() string {
	return gonanoid.MustGenerate(tokenAlphabet, tokenSize)
}

// NewReference returns a lead reference. A size below one means ReferenceSize.
func NewReference(size int) string {
	if size < 1 {
		size = ReferenceSize
	}
	return gonanoid.MustGenerate(referenceAlphabet, size)
}
