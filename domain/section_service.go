package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SectionService handles section creation within a project.
type SectionService struct {
	st Store
	d  Dispatcher
}

func NewSectionService(st Store, d Dispatcher) SectionService {
	return SectionService{st: st, d: d}
}

// Create appends a section to the project's sibling order.
func (s SectionService) Create(ctx context.Context, in CreateSection, actorID string) (Section, error) {
	project, err := s.st.GetProject(ctx, in.ProjectID)
	if err != nil {
		return Section{}, err
	}
	if project == nil {
		return Section{}, fmt.Errorf("project %s: %w", in.ProjectID, ErrNotFound)
	}

	section := Section{ID: uuid.NewString(), ProjectID: in.ProjectID, Name: in.Name}
	err = s.st.Transact(ctx, func(tx Store) error {
		max, err := tx.MaxSectionOrder(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		section.Order = max + 1
		return tx.InsertSection(ctx, section)
	})
	if err != nil {
		return Section{}, err
	}

	s.d.Dispatch([]ChangeEvent{SectionCreated{SectionID: section.ID, ProjectID: section.ProjectID, Name: section.Name}}, actorID)
	return section, nil
}

// ProjectService handles project creation and board reads.
type ProjectService struct{ st Store }

func NewProjectService(st Store) ProjectService { return ProjectService{st: st} }

// Create inserts a new empty project.
func (s ProjectService) Create(ctx context.Context, name string) (Project, error) {
	project := Project{ID: uuid.NewString(), Name: name}
	if err := s.st.InsertProject(ctx, project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// Board returns the project's sections with their tasks, ascending by order.
func (s ProjectService) Board(ctx context.Context, projectID string) ([]BoardSection, error) {
	project, err := s.st.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return s.st.Board(ctx, projectID)
}
