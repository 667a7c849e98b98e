package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"staffleave/internal/domain/auth"
	"staffleave/internal/platform/config"
	"staffleave/internal/platform/querier"
)

type seedUser struct {
	name           string
	email          string
	password       string
	role           auth.Role
	teacherRoles   []string
	employmentType *string
}

// Seed creates the bootstrap administrator and, when configured, a principal.
// Existing accounts are left untouched.
func Seed(ctx context.Context, db querier.Querier, cfg config.Config) error {
	fullTime := string(auth.EmploymentFullTime)
	users := []seedUser{
		{
			name:     "Administrator",
			email:    cfg.SeedAdminEmail,
			password: cfg.SeedAdminPassword,
			role:     auth.RoleAdmin,
		},
		{
			name:           "Principal",
			email:          cfg.SeedPrincipalEmail,
			password:       cfg.SeedPrincipalPass,
			role:           auth.RoleTeacher,
			teacherRoles:   []string{string(auth.CapPrincipal)},
			employmentType: &fullTime,
		},
	}
	for _, u := range users {
		if strings.TrimSpace(u.email) == "" || u.password == "" {
			continue
		}
		created, err := ensureUser(ctx, db, u)
		if err != nil {
			return fmt.Errorf("seed %s: %w", u.email, err)
		}
		if created {
			slog.Info("seed user created", "email", u.email, "role", u.role)
		}
	}
	return nil
}

func ensureUser(ctx context.Context, db querier.Querier, u seedUser) (bool, error) {
	var id string
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", u.email).Scan(&id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := auth.HashPassword(u.password)
	if err != nil {
		return false, err
	}
	teacherRoles := u.teacherRoles
	if teacherRoles == nil {
		teacherRoles = []string{}
	}
	_, err = db.Exec(ctx, `
    INSERT INTO users (name, email, password_hash, role, teacher_roles, employment_type)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, u.name, u.email, hash, string(u.role), teacherRoles, u.employmentType)
	if err != nil {
		return false, err
	}
	return true, nil
}
