package utils

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes: bcrypt từ chối input dài hơn 72 byte.
const MaxPasswordBytes = 72

// HashPassword băm mật khẩu bằng bcrypt; cost thấp hơn DefaultCost bị nâng lên DefaultCost.
func HashPassword(raw string, cost int) (string, error) {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	return string(b), err
}

func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
