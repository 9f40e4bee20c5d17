//go:build js && wasm

package jsstorage_test

import (
	"errors"
	"syscall/js"
	"testing"

	"github.com/karupanerura/webstore/storage/jsstorage"
)

func TestDocumentCookie_NoDocument(t *testing.T) {
	if document := js.Global().Get("document"); !document.IsUndefined() && !document.IsNull() {
		t.Skip("the global scope has a document")
	}

	s, err := jsstorage.DocumentCookie()
	if !errors.Is(err, jsstorage.ErrNoDocument) {
		t.Errorf("expected ErrNoDocument, got %v", err)
	}
	if s != nil {
		t.Errorf("expected no storage, got %v", s)
	}
}
