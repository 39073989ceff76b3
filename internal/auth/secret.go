package auth

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/bcrypt"
)

// currentSecretVersion is written for every freshly hashed secret. Version 0
// (keyed xxhash) predates bcrypt support and is only ever read, never
// written, by this build (spec.md §6, §9).
const currentSecretVersion = 1

func secretBytes(secret [4]uint32) []byte {
	b := make([]byte, 16)
	for i, w := range secret {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func newSalt() (salt0, salt1 uint64, err error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:]), nil
}

// foldSalt folds both salts into the secret's byte representation; this is
// the input actually hashed, for both versions.
func foldSalt(salt0, salt1 uint64, secret [4]uint32) []byte {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], salt0)
	binary.LittleEndian.PutUint64(buf[8:16], salt1)
	copy(buf[16:], secretBytes(secret))
	return buf[:]
}

// hashSecret produces a fresh "version;salt0;salt1;hash" record for secret,
// always under currentSecretVersion.
func hashSecret(secret [4]uint32) (string, error) {
	salt0, salt1, err := newSalt()
	if err != nil {
		return "", err
	}
	return encodeSecret(currentSecretVersion, salt0, salt1, secret)
}

func encodeSecret(version int, salt0, salt1 uint64, secret [4]uint32) (string, error) {
	folded := foldSalt(salt0, salt1, secret)
	var hash string
	switch version {
	case 0:
		hash = hex.EncodeToString(sum64Bytes(xxhash.Sum64(folded)))
	case 1:
		b, err := bcrypt.GenerateFromPassword(folded, bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		hash = string(b)
	default:
		return "", fmt.Errorf("auth: unknown secret version %d", version)
	}
	return fmt.Sprintf("%d;%d;%d;%s", version, salt0, salt1, hash), nil
}

func sum64Bytes(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

// verifySecret checks secret against a stored record. deprecated reports
// whether the record predates currentSecretVersion, so Login can rehash it
// on a successful match (spec.md §6, P6).
func verifySecret(stored string, secret [4]uint32) (ok bool, deprecated bool, err error) {
	parts := strings.SplitN(stored, ";", 4)
	if len(parts) != 4 {
		return false, false, fmt.Errorf("auth: malformed secret record")
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return false, false, fmt.Errorf("auth: malformed secret version: %w", err)
	}
	salt0, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return false, false, fmt.Errorf("auth: malformed salt0: %w", err)
	}
	salt1, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return false, false, fmt.Errorf("auth: malformed salt1: %w", err)
	}
	hash := parts[3]
	folded := foldSalt(salt0, salt1, secret)

	switch version {
	case 0:
		ok = hex.EncodeToString(sum64Bytes(xxhash.Sum64(folded))) == hash
	case 1:
		ok = bcrypt.CompareHashAndPassword([]byte(hash), folded) == nil
	default:
		return false, false, fmt.Errorf("auth: unknown secret version %d", version)
	}
	return ok, ok && version < currentSecretVersion, nil
}
