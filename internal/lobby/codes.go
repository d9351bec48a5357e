package lobby

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"math/big"

	"github.com/moyeshkhanal/partyGames/internal/store"
)

// keyPrefix namespaces lobby records in the shared store.
const keyPrefix = "lobby:"

func lobbyKey(code string) string {
	return keyPrefix + code
}

// CodeAllocator hands out short shareable lobby codes that are unused at
// the moment of the existence check. The window between that check and the
// caller's write is closed by the caller (CreateLobby retries on ErrExists).
type CodeAllocator struct {
	store       store.Store
	maxAttempts int
}

func NewCodeAllocator(st store.Store, maxAttempts int) *CodeAllocator {
	if maxAttempts <= 0 {
		maxAttempts = store.DefaultMaxAttempts
	}
	return &CodeAllocator{store: st, maxAttempts: maxAttempts}
}

// Allocate generates candidate codes until one is free, bounded so a
// (practically unreachable) exhausted code space surfaces as
// ErrCodesExhausted rather than a spin.
func (a *CodeAllocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		taken, err := a.store.Exists(ctx, lobbyKey(code))
		if err != nil {
			return "", fmt.Errorf("checking lobby code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodesExhausted
}

func generateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generating lobby code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
