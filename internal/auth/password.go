// Package auth はパスワードハッシュとベアラートークンの発行・検証を提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost はbcryptのデフォルトコストファクタ。
const DefaultBcryptCost = 10

// HashPassword は平文パスワードをbcryptでハッシュ化する。
// ソルトはbcrypt内部で生成されるため、同じ平文でも毎回異なるハッシュになる。
func HashPassword(plaintext string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword は平文パスワードとハッシュの一致を検証する。
// 比較はbcrypt自身の定数時間比較に委譲する。
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
