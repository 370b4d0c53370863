// Package idgen provides pluggable ID generation for recolte.
//
// Stored results, scratch files, and session events all need identifiers
// that are unique with overwhelming probability within a process lifetime.
// Constructors accept a Generator, making the ID strategy a startup-time
// decision rather than a compile-time one.
package idgen

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// NanoID returns a Generator that produces base-36 IDs of the given length.
// Short, URL-safe, fast. Collisions are tolerated by callers (a colliding
// store insert simply overwrites), so no cryptographic uniqueness is claimed.
func NanoID(length int) Generator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	return func() string {
		b := make([]byte, length)
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		for i := range b {
			b[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(b)
	}
}

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable and globally unique; used for session event rows.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Timestamped returns a Generator that produces IDs of the form
// "<unix-millis>-<suffix>". The time prefix keeps IDs roughly sortable
// and human-datable; the suffix carries the randomness.
func Timestamped(gen Generator) Generator {
	return func() string {
		return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), gen())
	}
}

// Default is the module default: millisecond timestamp + 8 random base-36
// characters. This is the shape result ids take in tool output.
var Default Generator = Timestamped(NanoID(8))

// New produces an ID using the Default generator.
func New() string {
	return Default()
}
