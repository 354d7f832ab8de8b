package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/client/services"
	"github.com/dvoronkov/petvault/internal/common"
)

// errNotLoggedIn guards commands that need an authenticated user.
var errNotLoggedIn = errors.New("login first")

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		printlnFn("Please login first.")
		return errNotLoggedIn
	}
	return nil
}

// AddPet interactively collects a new pet record and stores it locally.
func (a *App) AddPet(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	in, err := a.promptPetInput(services.PetInput{})
	if err != nil {
		return err
	}

	pet, err := a.petService.Add(ctx, a.session.UserID, in)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			printlnFn(err.Error())
			return nil
		}
		return err
	}

	printlnFn(fmt.Sprintf("Added %s (%s).", pet.Name, pet.ID))
	return nil
}

// List prints the user's pets, one line each.
func (a *App) List(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	pets, err := a.petService.List(ctx, a.session.UserID)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if len(pets) == 0 {
		printlnFn("No pets yet. Use 'add' to create one.")
		return nil
	}
	for _, p := range pets {
		printlnFn(fmt.Sprintf("%s  %-12s %s (%s)", p.ID, p.Name, p.Species, p.Breed))
	}
	return nil
}

// Show prints the full record of one pet.
func (a *App) Show(ctx context.Context, id string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	pet, err := a.petService.Get(ctx, a.session.UserID, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("Pet not found.")
			return nil
		}
		return err
	}

	printlnFn(formatPet(pet))
	return nil
}

// Edit re-prompts every editable field, using the current values as
// defaults, and saves the result as one update.
func (a *App) Edit(ctx context.Context, id string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	pet, err := a.petService.Get(ctx, a.session.UserID, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("Pet not found.")
			return nil
		}
		return err
	}

	in, err := a.promptPetInput(services.PetInput{
		Name:    pet.Name,
		Species: pet.Species,
		Breed:   pet.Breed,
		Age:     pet.Age,
		Weight:  pet.Weight,
		Notes:   pet.Notes,
	})
	if err != nil {
		return err
	}

	updated, err := a.petService.Update(ctx, a.session.UserID, id, in)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			printlnFn(err.Error())
			return nil
		}
		return err
	}

	printlnFn(fmt.Sprintf("Updated %s.", updated.Name))
	return nil
}

// Delete soft-deletes a pet; the tombstone propagates on the next sync.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	err := a.petService.Delete(ctx, a.session.UserID, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("Pet not found.")
			return nil
		}
		return err
	}

	printlnFn("Deleted.")
	return nil
}

// promptPetInput collects all editable fields. Non-empty defaults are shown
// in the prompt and kept when the user just presses Enter.
func (a *App) promptPetInput(def services.PetInput) (services.PetInput, error) {
	var in services.PetInput
	var err error

	in.Name, err = a.promptWithDefault("Name", def.Name)
	if err != nil {
		return in, err
	}
	in.Species, err = a.promptWithDefault("Species", def.Species)
	if err != nil {
		return in, err
	}
	in.Breed, err = a.promptWithDefault("Breed (optional)", def.Breed)
	if err != nil {
		return in, err
	}
	in.Age, err = GetInt(a.reader, fmt.Sprintf("Age in years [%d]", def.Age), def.Age, os.Stdout)
	if err != nil {
		return in, err
	}
	in.Weight, err = GetFloat(a.reader, fmt.Sprintf("Weight in kg [%g]", def.Weight), def.Weight, os.Stdout)
	if err != nil {
		return in, err
	}
	in.Notes, err = GetMultiline(a.reader, "Notes (optional)", os.Stdout)
	if err != nil {
		return in, err
	}
	if in.Notes == "" {
		in.Notes = def.Notes
	}
	return in, nil
}

func (a *App) promptWithDefault(label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	v, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

func formatPet(p *models.Pet) string {
	return fmt.Sprintf(
		"ID:       %s\nName:     %s\nSpecies:  %s\nBreed:    %s\nAge:      %d\nWeight:   %.1f kg\nUpdated:  %s\nNotes:    %s",
		p.ID, p.Name, p.Species, p.Breed, p.Age, p.Weight,
		p.LastModified.Local().Format("2006-01-02 15:04:05"), p.Notes,
	)
}
