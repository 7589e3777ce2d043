package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yukikurage/society-committee-api/internal/models"
	"github.com/yukikurage/society-committee-api/internal/repository"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the YAML document accepted by the seed command.
type SeedFile struct {
	Designations []SeedDesignation `yaml:"designations"`
	Users        []SeedUser        `yaml:"users"`
}

type SeedDesignation struct {
	Name      string `yaml:"name"`
	Level     string `yaml:"level"`
	SortOrder int    `yaml:"sort_order"`
	Active    *bool  `yaml:"active"`
}

type SeedUser struct {
	Name            string `yaml:"name"`
	Email           string `yaml:"email"`
	Image           string `yaml:"image"`
	UserType        string `yaml:"usertype"`
	Designation     string `yaml:"designation"`
	CommitteeStatus string `yaml:"committee_status"`
	Approved        bool   `yaml:"approved"`
}

// SeedSummary counts what Apply created and skipped.
type SeedSummary struct {
	DesignationsCreated int
	DesignationsSkipped int
	UsersCreated        int
	UsersSkipped        int
}

// ParseSeedFile decodes a seed document, rejecting unknown fields.
func ParseSeedFile(r io.Reader) (*SeedFile, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file SeedFile
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &file, nil
}

// SeedService loads designations and users from a seed file.
type SeedService struct {
	store repository.Store
	now   func() time.Time
}

func NewSeedService(store repository.Store) *SeedService {
	return &SeedService{store: store, now: time.Now}
}

// Apply inserts missing designations (by name) and users (by email) in one
// transaction. Existing rows are left as they are.
func (s *SeedService) Apply(ctx context.Context, file *SeedFile) (*SeedSummary, error) {
	summary := &SeedSummary{}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		for _, d := range file.Designations {
			name := strings.TrimSpace(d.Name)
			if name == "" {
				return kind("designation name is required", ErrValidation)
			}

			if _, err := tx.Designations().FindByName(ctx, name); err == nil {
				summary.DesignationsSkipped++
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			active := true
			if d.Active != nil {
				active = *d.Active
			}
			designation := &models.Designation{
				Name:      name,
				Level:     d.Level,
				SortOrder: d.SortOrder,
				Active:    active,
			}
			if err := tx.Designations().Create(ctx, designation); err != nil {
				return err
			}
			summary.DesignationsCreated++
		}

		for _, u := range file.Users {
			email := strings.TrimSpace(u.Email)
			if email == "" {
				return kind("user email is required", ErrValidation)
			}

			if _, err := tx.Users().FindByEmail(ctx, email); err == nil {
				summary.UsersSkipped++
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			user := &models.User{
				Name:            u.Name,
				Email:           email,
				Image:           u.Image,
				UserType:        models.UserType(strings.ToLower(strings.TrimSpace(u.UserType))),
				CommitteeStatus: models.CommitteeStatus(u.CommitteeStatus),
				Approved:        u.Approved,
			}

			if u.Designation != "" {
				designation, err := tx.Designations().FindByName(ctx, u.Designation)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: %s", ErrDesignationNotFound, u.Designation)
					}
					return err
				}
				assignedAt := s.now()
				user.DesignationID = &designation.ID
				user.DesignationAssignedAt = &assignedAt
			}

			if err := tx.Users().Create(ctx, user); err != nil {
				return err
			}
			summary.UsersCreated++
		}

		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to apply seed file: %w", err)
	}

	return summary, nil
}
