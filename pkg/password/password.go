package password

import (
	"golang.org/x/crypto/bcrypt"
)

// MinLength 密码最短长度
const MinLength = 6

// Hash 生成密码哈希
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 校验密码
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Acceptable 密码长度是否满足要求（按字符数计算）
func Acceptable(plain string) bool {
	return len([]rune(plain)) >= MinLength
}
