package cache

import (
	"context"
	"errors"
	"fmt"
	"go-ecb-exchange-bank/domain"
	"io/fs"
	"os"
)

// Kind the variants a Slot can take
type Kind int

const (
	KindNone Kind = iota
	KindFile
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindCallback:
		return "callback"
	default:
		return "none"
	}
}

// ReadFunc returns the cached document, or "" when nothing is cached.
type ReadFunc func(ctx context.Context) (string, error)

// WriteFunc stores a freshly fetched document.
type WriteFunc func(ctx context.Context, document string) error

// Slot is where the raw document of one feed persists between refreshes.
// The zero value is the None variant.
type Slot struct {
	kind  Kind
	path  string
	read  ReadFunc
	write WriteFunc
}

// None a slot that never caches
func None() Slot {
	return Slot{kind: KindNone}
}

// File a slot backed by a file on disk
func File(path string) Slot {
	return Slot{kind: KindFile, path: path}
}

// Callback a slot backed by caller-supplied read and write functions
func Callback(read ReadFunc, write WriteFunc) Slot {
	return Slot{kind: KindCallback, read: read, write: write}
}

func (s Slot) Kind() Kind {
	return s.kind
}

// Configured reports whether the slot is anything other than None.
func (s Slot) Configured() bool {
	return s.kind != KindNone
}

// Read returns the cached document. ok is false when there is nothing cached.
func (s Slot) Read(ctx context.Context) (document string, ok bool, err error) {
	switch s.kind {
	case KindFile:
		bytes, err := os.ReadFile(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("reading cache file [%v]: %w", s.path, err)
		}
		return string(bytes), true, nil
	case KindCallback:
		if s.read == nil {
			return "", false, nil
		}
		document, err := s.read(ctx)
		if err != nil {
			return "", false, fmt.Errorf("reading cache: %w", err)
		}
		return document, document != "", nil
	default:
		return "", false, nil
	}
}

// Write replaces the cached document. Writing to a None slot fails with domain.ErrInvalidCache.
func (s Slot) Write(ctx context.Context, document string) error {
	switch s.kind {
	case KindFile:
		if err := os.WriteFile(s.path, []byte(document), 0o644); err != nil {
			return fmt.Errorf("writing cache file [%v]: %w", s.path, err)
		}
		return nil
	case KindCallback:
		if s.write == nil {
			return fmt.Errorf("%w: callback slot has no write function", domain.ErrInvalidCache)
		}
		if err := s.write(ctx, document); err != nil {
			return fmt.Errorf("writing cache: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: no cache configured", domain.ErrInvalidCache)
	}
}
