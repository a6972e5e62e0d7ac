package session

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var (
	salt = []byte("mrejesho.core.session.sealer")

	errUnseal = errors.New("could not unseal token")
)

// Sealer encrypts backend tokens before they are stored.
type Sealer struct {
	key [32]byte
}

func NewSealer(secretKey string) *Sealer {
	return &Sealer{key: sha256.Sum256(append(append([]byte{}, salt...), secretKey...))}
}

func (s *Sealer) Seal(token string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generating nonce")
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key), nil
}

func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize {
		return "", errUnseal
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	token, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errUnseal
	}
	return string(token), nil
}
