package identity

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/auth"
	"staffleave/internal/platform/querier"
)

const entity = "user"

var actorColumns = []string{"id", "name", "email", "role", "teacher_roles", "employment_type", "level"}

type Store struct {
	DB      querier.Querier
	Timeout time.Duration
}

func NewStore(db querier.Querier, timeout time.Duration) *Store {
	return &Store{DB: db, Timeout: timeout}
}

func (s *Store) GetActor(ctx context.Context, userID string) (auth.Actor, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Select(actorColumns...).From("users").Where(squirrel.Eq{"id": userID}).ToSql()
	if err != nil {
		return auth.Actor{}, err
	}
	actor, err := scanActor(s.DB.QueryRow(ctx, query, args...))
	if err != nil {
		return auth.Actor{}, querier.MapError(err, entity)
	}
	return actor, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (auth.Actor, Credential, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cols := append(append([]string{}, actorColumns...), "password_hash", "mfa_enabled", "mfa_secret_enc")
	query, args, err := querier.SQL.Select(cols...).
		From("users").
		Where(squirrel.Expr("lower(email) = lower(?)", strings.TrimSpace(email))).
		ToSql()
	if err != nil {
		return auth.Actor{}, Credential{}, err
	}
	var cred Credential
	actor, err := scanActor(s.DB.QueryRow(ctx, query, args...), &cred.PasswordHash, &cred.MFAEnabled, &cred.MFASecretEnc)
	if err != nil {
		return auth.Actor{}, Credential{}, querier.MapError(err, entity)
	}
	cred.UserID = actor.ID
	return actor, cred, nil
}

func (s *Store) GetCredential(ctx context.Context, userID string) (Credential, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Select("id", "password_hash", "mfa_enabled", "mfa_secret_enc").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return Credential{}, err
	}
	var cred Credential
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&cred.UserID, &cred.PasswordHash, &cred.MFAEnabled, &cred.MFASecretEnc); err != nil {
		return Credential{}, querier.MapError(err, entity)
	}
	return cred, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return s.update(ctx, userID, map[string]any{"password_hash": hash})
}

// UpdateMFASecret replaces the secret and disables MFA until it is confirmed.
func (s *Store) UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error {
	return s.update(ctx, userID, map[string]any{"mfa_secret_enc": secretEnc, "mfa_enabled": false})
}

func (s *Store) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	return s.update(ctx, userID, map[string]any{"mfa_enabled": enabled})
}

func (s *Store) update(ctx context.Context, userID string, set map[string]any) error {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Update("users").
		SetMap(set).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		return querier.MapError(err, entity)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, c auth.UserCandidate, passwordHash string) (auth.Actor, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	teacherRoles := make([]string, 0, len(c.TeacherRoles))
	for _, r := range c.TeacherRoles {
		teacherRoles = append(teacherRoles, string(r))
	}
	query, args, err := querier.SQL.Insert("users").
		Columns("name", "email", "password_hash", "role", "teacher_roles", "employment_type", "level", "ic_number").
		Values(strings.TrimSpace(c.Name), strings.TrimSpace(c.Email), passwordHash, string(c.Role), teacherRoles,
			nullable(string(c.EmploymentType)), nullable(c.Level), nullable(c.ICNumber)).
		Suffix("RETURNING " + strings.Join(actorColumns, ", ")).
		ToSql()
	if err != nil {
		return auth.Actor{}, err
	}
	actor, err := scanActor(s.DB.QueryRow(ctx, query, args...))
	if err != nil {
		return auth.Actor{}, querier.MapError(err, entity)
	}
	return actor, nil
}

func scanActor(row pgx.Row, extra ...any) (auth.Actor, error) {
	var (
		a            auth.Actor
		role         string
		teacherRoles []string
		employment   *string
		level        *string
	)
	dest := append([]any{&a.ID, &a.Name, &a.Email, &role, &teacherRoles, &employment, &level}, extra...)
	if err := row.Scan(dest...); err != nil {
		return auth.Actor{}, err
	}
	a.Role = auth.Role(role)
	a.TeacherRoles = make([]auth.Capability, 0, len(teacherRoles))
	for _, r := range teacherRoles {
		a.TeacherRoles = append(a.TeacherRoles, auth.Capability(r))
	}
	if employment != nil {
		a.EmploymentType = auth.EmploymentType(*employment)
	}
	if level != nil {
		a.Level = *level
	}
	return a, nil
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
