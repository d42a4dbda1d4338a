package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskdeck-api/domain"
)

// Store is the relational position store. Lookups return nil for absent rows;
// task updates are version-checked and report lost races as
// domain.ErrConcurrencyConflict.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&projectRow{}, &sectionRow{}, &taskRow{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

type projectRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
}

func (projectRow) TableName() string { return "projects" }

type sectionRow struct {
	ID        string `gorm:"primaryKey"`
	ProjectID string `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	Order     int    `gorm:"column:position;not null"`
	CreatedAt time.Time
}

func (sectionRow) TableName() string { return "sections" }

type taskRow struct {
	ID         string `gorm:"primaryKey"`
	SectionID  string `gorm:"index;not null"`
	Title      string `gorm:"not null"`
	Notes      string
	Order      int  `gorm:"column:position;not null"`
	Completed  bool `gorm:"not null"`
	AssigneeID string
	Priority   int
	DueDate    *time.Time
	Version    int64 `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (taskRow) TableName() string { return "tasks" }

func (r taskRow) toDomain() domain.Task {
	return domain.Task{
		ID:         r.ID,
		SectionID:  r.SectionID,
		Title:      r.Title,
		Notes:      r.Notes,
		Order:      r.Order,
		Completed:  r.Completed,
		AssigneeID: r.AssigneeID,
		Priority:   r.Priority,
		DueDate:    r.DueDate,
		Version:    r.Version,
	}
}

func taskFromDomain(t domain.Task) taskRow {
	return taskRow{
		ID:         t.ID,
		SectionID:  t.SectionID,
		Title:      t.Title,
		Notes:      t.Notes,
		Order:      t.Order,
		Completed:  t.Completed,
		AssigneeID: t.AssigneeID,
		Priority:   t.Priority,
		DueDate:    t.DueDate,
		Version:    t.Version,
	}
}

func (r sectionRow) toDomain() domain.Section {
	return domain.Section{ID: r.ID, ProjectID: r.ProjectID, Name: r.Name, Order: r.Order}
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var row projectRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Project{ID: row.ID, Name: row.Name}, nil
}

func (s *Store) InsertProject(ctx context.Context, p domain.Project) error {
	return s.db.WithContext(ctx).Create(&projectRow{ID: p.ID, Name: p.Name}).Error
}

func (s *Store) GetSection(ctx context.Context, id string) (*domain.Section, error) {
	var row sectionRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	section := row.toDomain()
	return &section, nil
}

func (s *Store) InsertSection(ctx context.Context, sec domain.Section) error {
	row := sectionRow{ID: sec.ID, ProjectID: sec.ProjectID, Name: sec.Name, Order: sec.Order}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) ListSections(ctx context.Context, projectID string) ([]domain.Section, error) {
	var rows []sectionRow
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Section, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) MaxSectionOrder(ctx context.Context, projectID string) (int, error) {
	row := s.db.WithContext(ctx).Model(&sectionRow{}).
		Where("project_id = ?", projectID).
		Select("MAX(position)").Row()
	var max sql.NullInt64
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var row taskRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	task := row.toDomain()
	return &task, nil
}

func (s *Store) InsertTask(ctx context.Context, t domain.Task) error {
	row := taskFromDomain(t)
	return s.db.WithContext(ctx).Create(&row).Error
}

// UpdateTask saves the task if its version is still current, bumping the
// version. Zero affected rows means a concurrent writer got there first.
func (s *Store) UpdateTask(ctx context.Context, t domain.Task) error {
	res := s.db.WithContext(ctx).Model(&taskRow{}).
		Where("id = ? AND version = ?", t.ID, t.Version).
		Updates(map[string]interface{}{
			"section_id":  t.SectionID,
			"title":       t.Title,
			"notes":       t.Notes,
			"position":    t.Order,
			"completed":   t.Completed,
			"assignee_id": t.AssigneeID,
			"priority":    t.Priority,
			"due_date":    t.DueDate,
			"version":     t.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&taskRow{}, "id = ?", id).Error
}

func (s *Store) ListTasks(ctx context.Context, sectionID string) ([]domain.Task, error) {
	var rows []taskRow
	err := s.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("position asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) MaxTaskOrder(ctx context.Context, sectionID string) (int, error) {
	row := s.db.WithContext(ctx).Model(&taskRow{}).
		Where("section_id = ?", sectionID).
		Select("MAX(position)").Row()
	var max sql.NullInt64
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// ShiftOrders opens a slot at minOrder by incrementing the position of every
// task in the section at or beyond it, except the task being placed. One
// conditional bulk update, meant to run inside Transact.
func (s *Store) ShiftOrders(ctx context.Context, sectionID string, minOrder int, excludeTaskID string) error {
	return s.db.WithContext(ctx).Model(&taskRow{}).
		Where("section_id = ? AND position >= ? AND id <> ?", sectionID, minOrder, excludeTaskID).
		UpdateColumn("position", gorm.Expr("position + 1")).Error
}

func (s *Store) Board(ctx context.Context, projectID string) ([]domain.BoardSection, error) {
	sections, err := s.ListSections(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BoardSection, 0, len(sections))
	for _, sec := range sections {
		tasks, err := s.ListTasks(ctx, sec.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.BoardSection{Section: sec, Tasks: tasks})
	}
	return out, nil
}

// Transact runs fn against a store bound to one database transaction. An
// error from fn rolls everything back.
func (s *Store) Transact(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
