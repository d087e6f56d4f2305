package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/songhq/songwork/internal/domain/org"
	"github.com/songhq/songwork/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// IfEmpty creates the initial accounts and departments on a fresh store.
// It is a no-op when any user already exists, so restores and reboots never
// duplicate seed data.
func IfEmpty(ctx context.Context, users repository.UserRepository, depts repository.DepartmentRepository, logger *slog.Logger) error {
	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()

	accounts := []struct {
		username string
		password string
		display  string
		role     org.Role
	}{
		{"master", "master1234", "Director", org.RoleMaster},
		{"admin", "admin1234", "Administrator", org.RoleAdmin},
		{"user1", "user1234", "Staff", org.RoleUser},
	}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}
		user := &org.User{
			ID:          uuid.NewString(),
			Username:    a.username,
			Password:    string(hash),
			DisplayName: a.display,
			Role:        a.role,
			IsActive:    true,
			CreatedAt:   now,
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("seeding user %s: %w", a.username, err)
		}
	}

	defaults := []struct {
		name        string
		emoji       string
		description string
		manager     string
	}{
		{"Operations", "🏢", "Day-to-day running of the organization", "Kim"},
		{"Engineering", "🔧", "Product development and maintenance", "Lee"},
		{"Support", "💬", "Customer and internal support", "Park"},
	}
	for _, d := range defaults {
		manager := d.manager
		dept := &org.Department{
			ID:          uuid.NewString(),
			Name:        d.name,
			Emoji:       d.emoji,
			Description: d.description,
			ManagerName: &manager,
			CreatedAt:   now,
		}
		if err := depts.Create(ctx, dept); err != nil {
			return fmt.Errorf("seeding department %s: %w", d.name, err)
		}
	}

	logger.Info("seeded initial data", "users", len(accounts), "departments", len(defaults))
	return nil
}
