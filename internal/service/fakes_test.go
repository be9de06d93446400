package service

import (
	"context"
	"sync"

	"brewing_control/internal/control"
	"brewing_control/internal/models"
	"brewing_control/internal/repository"
)

// fakeEngine records submitted commands and publishes a fixed snapshot.
type fakeEngine struct {
	mu        sync.Mutex
	layout    control.Layout
	pub       *control.Publisher
	submitted []control.Command
	submitErr error
}

func newFakeEngine(zones, actuators int, snap models.Snapshot) *fakeEngine {
	return &fakeEngine{
		layout: control.Layout{Zones: zones, Actuators: actuators},
		pub:    control.NewPublisher(snap),
	}
}

func (f *fakeEngine) Submit(_ context.Context, cmd control.Command) (models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, cmd)
	if f.submitErr != nil {
		return models.Snapshot{}, f.submitErr
	}
	return f.pub.Current(), nil
}

func (f *fakeEngine) Current() models.Snapshot          { return f.pub.Current() }
func (f *fakeEngine) Subscribe() *control.Subscription { return f.pub.Subscribe() }
func (f *fakeEngine) Layout() control.Layout           { return f.layout }

func (f *fakeEngine) commands() []control.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]control.Command(nil), f.submitted...)
}

// memRecipes is an in-memory RecipeRepo.
type memRecipes struct {
	items     map[string]models.StoredRecipe
	nextID    int
	createErr error
}

func newMemRecipes() *memRecipes {
	return &memRecipes{items: map[string]models.StoredRecipe{}}
}

func (m *memRecipes) Create(_ context.Context, name string, steps []models.RecipeStep) (models.StoredRecipe, error) {
	if m.createErr != nil {
		return models.StoredRecipe{}, m.createErr
	}
	m.nextID++
	rec := models.StoredRecipe{ID: string(rune('a' + m.nextID - 1)), Name: name, Steps: steps, CreatedAt: int64(m.nextID)}
	m.items[rec.ID] = rec
	return rec, nil
}

func (m *memRecipes) Get(_ context.Context, id string) (models.StoredRecipe, error) {
	rec, ok := m.items[id]
	if !ok {
		return models.StoredRecipe{}, repository.ErrNotFound
	}
	return rec, nil
}

func (m *memRecipes) List(context.Context) ([]models.StoredRecipe, error) {
	out := make([]models.StoredRecipe, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRecipes) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}
