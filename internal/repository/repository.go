// Package repository provides the typed CRUD layer. Every repository owns
// exactly one named document and goes through the DocumentStore facade, so
// cache and version-token state stay consistent across the process.
package repository

import (
	"github.com/skanerxe/nutrition-helper/internal/storage"
)

func marshalMap[T any](m map[string]T) ([]byte, error) {
	return storage.MarshalDocument(m)
}
