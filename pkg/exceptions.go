package pkg

import "errors"

var (
	// Verification errors 🔍
	ErrVerificationFailed = errors.New("❌ package verification failed")
)
