package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandByteArray(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)

	assert.Len(t, a, n)
	assert.Len(t, b, n)
	assert.False(t, bytes.Equal(a, b), "two random reads should differ")
}

func TestGenerateRandByteArray_ZeroSize(t *testing.T) {
	assert.Empty(t, GenerateRandByteArray(0))
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("secret password")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, len(buf)), buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}
