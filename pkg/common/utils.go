package common

import (
	"math/rand"
	"time"
)

// GenerateEntryNo returns a short human-quotable reference for a ledger
// entry, printed on statements next to the uuid primary key.
func GenerateEntryNo() string {
	const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 10)
	for i := range result {
		result[i] = characters[r.Intn(len(characters))]
	}
	return string(result)
}
