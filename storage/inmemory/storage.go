package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"aora/plain"
	"aora/schemas"
	"aora/storage"
)

type MemoryStorage struct {
	mu sync.RWMutex

	docById          map[string]*schemas.Document
	docsByCollection map[string][]*schemas.Document
}

func NewInMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		docById:          map[string]*schemas.Document{},
		docsByCollection: map[string][]*schemas.Document{},
	}
}

func docKey(collection, id string) string {
	return collection + "/" + id
}

func (s *MemoryStorage) CreateDocument(_ context.Context, collection string, fields schemas.Fields) (*schemas.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	newDoc := &schemas.Document{
		ID:         schemas.NewPostId().String(),
		Collection: collection,
		Fields:     fields.Copy(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.docById[docKey(collection, newDoc.ID)] = newDoc
	docList := s.docsByCollection[collection]
	docList = append(docList, newDoc)
	for i := len(docList) - 1; i > 0 && docList[i].ID < docList[i-1].ID; i-- {
		docList[i-1], docList[i] = docList[i], docList[i-1]
	}
	s.docsByCollection[collection] = docList

	return newDoc.Copy(), nil
}

func (s *MemoryStorage) GetDocument(_ context.Context, collection, id string) (*schemas.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docById[docKey(collection, id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	return doc.Copy(), nil
}

func (s *MemoryStorage) UpdateDocument(_ context.Context, collection, id string, fields schemas.Fields) (*schemas.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docById[docKey(collection, id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	doc.Fields = doc.Fields.Merge(fields)
	doc.UpdatedAt = time.Now().UTC()
	return doc.Copy(), nil
}

func (s *MemoryStorage) DeleteDocument(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := docKey(collection, id)
	if _, ok := s.docById[key]; !ok {
		return fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	delete(s.docById, key)

	docList := s.docsByCollection[collection]
	for i := range docList {
		if docList[i].ID == id {
			docList = append(docList[:i:i], docList[i+1:]...)
			break
		}
	}
	s.docsByCollection[collection] = docList
	return nil
}

func (s *MemoryStorage) ListDocuments(_ context.Context, collection string, query plain.ListQuery) ([]*schemas.Document, string, error) {
	query, size, err := plain.CorrectDestruct(query)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", storage.ErrInvalidArgument, err.Error())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	docList := s.docsByCollection[collection]

	// the cursor is an exclusive bound, so it may name a document deleted since
	lastSeenIndex := len(docList)
	if query.LastSeenID != "" {
		lastSeenIndex = sort.Search(len(docList), func(i int) bool {
			return docList[i].ID >= query.LastSeenID
		})
	}

	pack := make([]*schemas.Document, 0, size)
	nextCursor := ""
	for i := lastSeenIndex - 1; i >= 0; i-- {
		if !query.Matches(docList[i].Fields) {
			continue
		}
		if len(pack) == size {
			nextCursor = pack[size-1].ID
			break
		}
		pack = append(pack, docList[i].Copy())
	}
	return pack, nextCursor, nil
}
