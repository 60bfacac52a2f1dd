package mediaid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix marks identifiers issued by the relational record stores.
const Prefix = "med_"

var (
	entropyOnce sync.Once
	entropyMu   sync.Mutex
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns a med_* ULID string.
func New() string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	entropyMu.Unlock()
	return Prefix + strings.ToLower(id.String())
}

// IsValid reports whether the string is a med_* ULID.
func IsValid(value string) bool {
	if !strings.HasPrefix(value, Prefix) {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips the med_ prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, Prefix)
	return ulid.Parse(strings.ToUpper(value))
}

// Token returns a lowercase ULID without prefix, used for storage object names.
func Token() string {
	return strings.TrimPrefix(New(), Prefix)
}
