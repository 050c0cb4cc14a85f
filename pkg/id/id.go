// Package id generates time-sortable order identifiers.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Monotonic entropy keeps IDs minted within the same millisecond
	// lexicographically increasing, which the audit journal relies on.
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewOrderID returns a fresh ULID string. Order IDs sort by creation
// time, so ID order and insertion order agree in the order table.
func NewOrderID() string {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		panic(err)
	}
	return u.String()
}
