package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/client/store"
	"github.com/dvoronkov/petvault/internal/common"
)

// PetInput carries the user-editable fields of a pet record.
type PetInput struct {
	Name    string
	Species string
	Breed   string
	Age     int
	Weight  float64
	Notes   string
}

// PetService defines pet CRUD for the CLI. Every mutation lands in the
// local store immediately and reaches the remote on the next sync cycle.
type PetService interface {
	Add(ctx context.Context, userID string, in PetInput) (*models.Pet, error)
	Get(ctx context.Context, userID, id string) (*models.Pet, error)
	List(ctx context.Context, userID string) ([]models.Pet, error)
	Update(ctx context.Context, userID, id string, in PetInput) (*models.Pet, error)
	Delete(ctx context.Context, userID, id string) error
}

type petService struct {
	store *store.Store
}

// NewPetService constructs a PetService over the local store.
func NewPetService(s *store.Store) PetService {
	return &petService{store: s}
}

func validatePetInput(in PetInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	case strings.TrimSpace(in.Species) == "":
		return fmt.Errorf("%w: species is required", common.ErrValidation)
	case in.Age < 0:
		return fmt.Errorf("%w: age cannot be negative", common.ErrValidation)
	case in.Weight < 0:
		return fmt.Errorf("%w: weight cannot be negative", common.ErrValidation)
	}
	return nil
}

func (p *petService) Add(ctx context.Context, userID string, in PetInput) (*models.Pet, error) {
	if err := validatePetInput(in); err != nil {
		return nil, err
	}
	return p.store.CreatePet(ctx, &models.Pet{
		UserID:  userID,
		Name:    strings.TrimSpace(in.Name),
		Species: strings.TrimSpace(in.Species),
		Breed:   strings.TrimSpace(in.Breed),
		Age:     in.Age,
		Weight:  in.Weight,
		Notes:   in.Notes,
	})
}

// Get returns the pet only when it belongs to userID; a foreign pet is
// indistinguishable from a missing one.
func (p *petService) Get(ctx context.Context, userID, id string) (*models.Pet, error) {
	pet, err := p.store.GetPet(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if pet.UserID != userID {
		return nil, common.ErrNotFound
	}
	return pet, nil
}

func (p *petService) List(ctx context.Context, userID string) ([]models.Pet, error) {
	return p.store.ListPets(ctx, userID, false)
}

func (p *petService) Update(ctx context.Context, userID, id string, in PetInput) (*models.Pet, error) {
	if err := validatePetInput(in); err != nil {
		return nil, err
	}
	if _, err := p.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return p.store.UpdatePet(ctx, &models.Pet{
		ID:      id,
		Name:    strings.TrimSpace(in.Name),
		Species: strings.TrimSpace(in.Species),
		Breed:   strings.TrimSpace(in.Breed),
		Age:     in.Age,
		Weight:  in.Weight,
		Notes:   in.Notes,
	})
}

func (p *petService) Delete(ctx context.Context, userID, id string) error {
	if _, err := p.Get(ctx, userID, id); err != nil {
		return err
	}
	return p.store.SoftDeletePet(ctx, id)
}
