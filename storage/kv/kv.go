// Package kv defines the flat key-value persistence substrate backing the
// record store. One value per collection; reads and writes are whole-document.
package kv

import "errors"

var ErrInvalidCollection = errors.New("invalid collection name")

type Store interface {
	// Get returns the raw document for a collection; ok is false when the
	// collection has never been written.
	Get(collection string) (data []byte, ok bool, err error)
	Set(collection string, data []byte) error
	Delete(collection string) error
	// Collections lists the collections that currently hold a document.
	Collections() ([]string, error)
	// Clear drops everything.
	Clear() error
}
