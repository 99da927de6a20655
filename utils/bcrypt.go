package utils

import "golang.org/x/crypto/bcrypt"

// Device-lock PIN hashing. The PIN never leaves the device; only the hash
// is stored in the local settings row.
func HashPin(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
}

func ComparePin(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
