package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the user is unknown, so the unknown-user
// and wrong-passcode paths take the same time and return the same answer.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-passcode"), bcrypt.DefaultCost)

// HashPasscode hashes a plaintext passcode for storage.
func HashPasscode(passcode string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPasscode reports whether the passcode matches the stored hash.
func VerifyPasscode(passcode, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)) == nil
}

// VerifyOrBurn behaves like VerifyPasscode, but when no hash is available
// (unknown user) it still performs a bcrypt comparison against a throwaway
// hash before answering false.
func VerifyOrBurn(passcode, hash string) bool {
	if hash == "" {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(passcode))
		return false
	}
	return VerifyPasscode(passcode, hash)
}
