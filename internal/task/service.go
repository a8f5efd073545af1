package task

import (
	"context"
	"errors"
	"strings"

	"taskboard-backend/internal/storage"
	"taskboard-backend/internal/task/entity"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, t *entity.Task) error
	ListByOwner(ctx context.Context, userID int64) ([]*entity.Task, error)
	GetByIDForOwner(ctx context.Context, id, userID int64) (*entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id, userID int64) error
}

var ErrNotFound = errors.New("task not found")

// ValidationError marks input the caller can fix; handlers map it to 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const maxTitleLen = 255

// Service holds task business rules: validation, defaults and ownership
// scoping on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Input carries the writable task fields. Nil pointers mean the field was
// omitted, which matters for update merge semantics.
type Input struct {
	Title       string
	Description *string
	Status      *string
}

func (in *Input) validate() (title string, desc *string, status entity.Status, err error) {
	title = strings.TrimSpace(in.Title)
	if title == "" {
		return "", nil, "", ValidationError("title is required")
	}
	if len(title) > maxTitleLen {
		return "", nil, "", ValidationError("title must be at most 255 characters")
	}
	if in.Description != nil {
		trimmed := strings.TrimSpace(*in.Description)
		desc = &trimmed
	}
	if in.Status != nil {
		status = entity.Status(*in.Status)
		if !status.Valid() {
			return "", nil, "", ValidationError("status must be one of pending, in_progress, completed")
		}
	}
	return title, desc, status, nil
}

// List returns all tasks owned by the caller, in storage order.
func (s *Service) List(ctx context.Context, userID int64) ([]*entity.Task, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Create persists a new task for the caller. Status defaults to pending when
// omitted.
func (s *Service) Create(ctx context.Context, userID int64, in Input) (*entity.Task, error) {
	title, desc, status, err := in.validate()
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = entity.StatusPending
	}
	t := &entity.Task{
		UserID:      userID,
		Title:       title,
		Description: desc,
		Status:      status,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update merges the supplied fields over the existing row. Omitted status and
// description keep their previous values. A task that does not exist or is
// not owned by the caller is ErrNotFound either way.
func (s *Service) Update(ctx context.Context, userID, id int64, in Input) (*entity.Task, error) {
	title, desc, status, err := in.validate()
	if err != nil {
		return nil, err
	}
	t, err := s.repo.GetByIDForOwner(ctx, id, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	t.Title = title
	if desc != nil {
		t.Description = desc
	}
	if status != "" {
		t.Status = status
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, mapNotFound(err)
	}
	return t, nil
}

// Delete removes a task the caller owns.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
