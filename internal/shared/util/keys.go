package util

import (
	"crypto/sha256"
	"encoding/hex"
	"path"

	"github.com/google/uuid"
)

// userKeyLen keeps object prefixes short; 128 bits of the digest is plenty to
// keep users apart.
const userKeyLen = 32

// HashUserKey returns a filesystem-safe identifier for a user ID.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:userKeyLen]
}

// ObjectKey builds "<hash(user)>/<uuid>_<name>" for an archived upload. The
// user's raw ID never appears in the key.
func ObjectKey(userID, fileName string) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(HashUserKey(userID), uuid.NewString()+"_"+name), nil
}
