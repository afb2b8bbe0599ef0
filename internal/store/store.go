// Package store keeps uploaded scene dumps. Documents are validated before
// they are stored, so anything read back parses.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/geoviz/internal/scene"
	"github.com/inamate/geoviz/internal/typeid"
)

var (
	ErrNotFound = errors.New("scene not found")
	ErrInvalid  = errors.New("invalid scene document")
)

// Record is a stored dump and its metadata.
type Record struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LayerCount int       `json:"layerCount"`
	CreatedAt  time.Time `json:"createdAt"`
	Document   []byte    `json:"-"`
}

// Repository persists records.
type Repository interface {
	Insert(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

// Service validates and stores dumps.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create validates doc and stores it under a new scene id.
func (s *Service) Create(ctx context.Context, name string, doc []byte) (*Record, error) {
	parsed, err := scene.ParseBytes(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if name == "" {
		name = "untitled"
	}

	rec := Record{
		ID:         typeid.NewSceneID(),
		Name:       name,
		LayerCount: parsed.LayerCount(),
		CreatedAt:  s.now().UTC(),
		Document:   doc,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert scene: %w", err)
	}
	return &rec, nil
}

// Get returns a stored record.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	if err := typeid.Validate(id, typeid.PrefixScene); err != nil {
		return nil, ErrNotFound
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Load returns a stored scene, parsed.
func (s *Service) Load(ctx context.Context, id string) (*scene.Scene, *Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	parsed, err := scene.ParseBytes(rec.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("parse stored scene %s: %w", id, err)
	}
	return parsed, rec, nil
}

// List returns up to limit records, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	recs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return recs, nil
}

// Delete removes a stored record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := typeid.Validate(id, typeid.PrefixScene); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
