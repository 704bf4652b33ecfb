package lsp

import (
	"strings"
	"sync"
)

// normalizeURI ensures consistent keying by stripping the file scheme.
func normalizeURI(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	uri = strings.TrimPrefix(uri, "file:")
	return uri
}

// Document is an open text document.
type Document struct {
	URI        string
	LanguageID string
	Version    int
	Content    string
}

// DocumentManager tracks open documents, keyed by normalized URI. It doubles
// as the lint runner's content source so checker locations are mapped
// against whatever the buffer holds at completion time.
type DocumentManager struct {
	store *sync.Map // map[string]*Document
}

func NewDocumentManager() *DocumentManager {
	return &DocumentManager{store: &sync.Map{}}
}

func (m *DocumentManager) Get(uri string) (*Document, bool) {
	v, ok := m.store.Load(normalizeURI(uri))
	if !ok {
		return nil, false
	}
	doc, ok := v.(*Document)
	return doc, ok
}

func (m *DocumentManager) Store(uri string, doc *Document) {
	m.store.Store(normalizeURI(uri), doc)
}

func (m *DocumentManager) Delete(uri string) {
	m.store.Delete(normalizeURI(uri))
}

// Content implements lint.ContentSource.
func (m *DocumentManager) Content(buffer string) (string, bool) {
	doc, ok := m.Get(buffer)
	if !ok {
		return "", false
	}
	return doc.Content, true
}
