// Package partition stores serialized ledger partitions by name.
package partition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a partition has never been written
var ErrNotFound = errors.New("partition not found")

// Object is one stored partition document
type Object struct {
	Data    []byte
	ModTime time.Time
}

// Store persists whole partition documents. Save replaces the document
// atomically: a concurrent Load sees either the old or the new bytes.
type Store interface {
	Load(ctx context.Context, name string) (Object, error)
	Stat(ctx context.Context, name string) (time.Time, error)
	Save(ctx context.Context, name string, data []byte) error
}

// ValidateName rejects names that could escape the store's namespace.
// Names are partition stems such as OT_A_2024 or OT_Slots/OT_A_2024.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty partition name")
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid partition name %q", name)
		}
	}
	if strings.ContainsAny(name, `\:`) {
		return fmt.Errorf("invalid partition name %q", name)
	}
	return nil
}
