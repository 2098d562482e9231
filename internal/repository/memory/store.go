// Package memory holds the in-process storage adapters. All application
// state is volatile by design: nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"studydesk/internal/domain"
)

// Store implements the subject and material repositories over plain maps.
// One mutex guards both, so a material move updates the source order, the
// target order and the material's owner atomically.
type Store struct {
	mu        sync.RWMutex
	subjects  map[string]*domain.Subject
	materials map[string]*domain.SavedMaterial
}

// NewStore creates a new empty Store
func NewStore() *Store {
	return &Store{
		subjects:  make(map[string]*domain.Subject),
		materials: make(map[string]*domain.SavedMaterial),
	}
}

func (s *Store) CreateSubject(ctx context.Context, subject *domain.Subject) error {
	if subject.ID == "" {
		return domain.NewInvalidInputError("subject ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subjects[subject.ID]; exists {
		return domain.NewInvalidInputError("subject already exists: " + subject.ID)
	}
	s.subjects[subject.ID] = copySubject(subject)
	return nil
}

func (s *Store) GetSubjectByID(ctx context.Context, id string) (*domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subject, ok := s.subjects[id]
	if !ok {
		return nil, nil
	}
	return copySubject(subject), nil
}

func (s *Store) GetSubjectsByUserID(ctx context.Context, userID string) ([]*domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Subject
	for _, subject := range s.subjects {
		if subject.UserID == userID {
			result = append(result, copySubject(subject))
		}
	}
	// Newest first; creation times can collide so the ULID breaks ties.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *Store) UpdateSubject(ctx context.Context, subject *domain.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.subjects[subject.ID]
	if !ok {
		return domain.NewSubjectNotFoundError(subject.ID)
	}
	stored.Name = subject.Name
	stored.UpdatedAt = subject.UpdatedAt
	return nil
}

// DeleteSubject removes a subject together with the materials it owns.
func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.subjects[id]
	if !ok {
		return domain.NewSubjectNotFoundError(id)
	}
	for _, materialID := range subject.MaterialIDs {
		delete(s.materials, materialID)
	}
	delete(s.subjects, id)
	return nil
}

func (s *Store) SaveMaterial(ctx context.Context, material *domain.SavedMaterial) error {
	if material.ID == "" {
		return domain.NewInvalidInputError("material ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.subjects[material.SubjectID]
	if !ok {
		return domain.NewSubjectNotFoundError(material.SubjectID)
	}
	if _, exists := s.materials[material.ID]; exists {
		return domain.NewInvalidInputError("material already exists: " + material.ID)
	}

	stored := *material
	s.materials[material.ID] = &stored
	subject.MaterialIDs = append([]string{material.ID}, subject.MaterialIDs...)
	return nil
}

func (s *Store) GetMaterialByID(ctx context.Context, id string) (*domain.SavedMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	material, ok := s.materials[id]
	if !ok {
		return nil, nil
	}
	copied := *material
	return &copied, nil
}

func (s *Store) GetMaterialsBySubjectID(ctx context.Context, subjectID string) ([]*domain.SavedMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subject, ok := s.subjects[subjectID]
	if !ok {
		return nil, domain.NewSubjectNotFoundError(subjectID)
	}

	result := make([]*domain.SavedMaterial, 0, len(subject.MaterialIDs))
	for _, id := range subject.MaterialIDs {
		if material, ok := s.materials[id]; ok {
			copied := *material
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	material, ok := s.materials[id]
	if !ok {
		return domain.NewMaterialNotFoundError(id)
	}
	if subject, ok := s.subjects[material.SubjectID]; ok {
		subject.MaterialIDs = removeID(subject.MaterialIDs, id)
	}
	delete(s.materials, id)
	return nil
}

// MoveMaterial transfers ownership to another subject. Moving a material to
// its current subject is a no-op; otherwise the material is removed from the
// source order and prepended to the target order exactly once.
func (s *Store) MoveMaterial(ctx context.Context, materialID, targetSubjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	material, ok := s.materials[materialID]
	if !ok {
		return domain.NewMaterialNotFoundError(materialID)
	}
	target, ok := s.subjects[targetSubjectID]
	if !ok {
		return domain.NewSubjectNotFoundError(targetSubjectID)
	}

	if material.SubjectID == targetSubjectID {
		return nil
	}

	if source, ok := s.subjects[material.SubjectID]; ok {
		source.MaterialIDs = removeID(source.MaterialIDs, materialID)
	}
	target.MaterialIDs = append([]string{materialID}, removeID(target.MaterialIDs, materialID)...)
	material.SubjectID = targetSubjectID
	return nil
}

func copySubject(subject *domain.Subject) *domain.Subject {
	copied := *subject
	copied.MaterialIDs = append([]string(nil), subject.MaterialIDs...)
	return &copied
}

func removeID(ids []string, id string) []string {
	result := ids[:0]
	for _, v := range ids {
		if v != id {
			result = append(result, v)
		}
	}
	return result
}

var (
	_ domain.SubjectRepository  = (*Store)(nil)
	_ domain.MaterialRepository = (*Store)(nil)
)
