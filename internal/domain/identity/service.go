package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/audit"
	"staffleave/internal/domain/auth"
	"staffleave/internal/domain/validation"
	"staffleave/internal/platform/crypto"
)

const mfaIssuer = "StaffLeave"

type Auditor interface {
	Record(ctx context.Context, p audit.Params) error
}

// Gate resolves who is calling and guards credential changes.
type Gate struct {
	Store     StoreAPI
	Audit     Auditor
	Secrets   *crypto.SecretBox
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *slog.Logger
	Now       func() time.Time

	// dummyHash keeps the cost of a login for an unknown email close to a real one.
	dummyHash string
}

func NewGate(store StoreAPI, auditor Auditor, secrets *crypto.SecretBox, jwtSecret string, ttl time.Duration, logger *slog.Logger) (*Gate, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := auth.HashPassword("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &Gate{
		Store:     store,
		Audit:     auditor,
		Secrets:   secrets,
		JWTSecret: jwtSecret,
		TokenTTL:  ttl,
		Logger:    logger.With("component", "identity"),
		Now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// RequireAuthenticated turns the verified session in ctx into a fresh Actor.
func (g *Gate) RequireAuthenticated(ctx context.Context) (auth.Actor, error) {
	session, ok := auth.SessionFrom(ctx)
	if !ok {
		return auth.Actor{}, apperr.ErrUnauthenticated
	}
	actor, err := g.Store.GetActor(ctx, session.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		// token outlived its account.
		return auth.Actor{}, apperr.ErrUnauthenticated
	}
	if err != nil {
		return auth.Actor{}, err
	}
	return actor, nil
}

func (g *Gate) RequireRole(ctx context.Context, allowed ...auth.Role) (auth.Actor, error) {
	actor, err := g.RequireAuthenticated(ctx)
	if err != nil {
		return auth.Actor{}, err
	}
	if !slices.Contains(allowed, actor.Role) {
		return auth.Actor{}, apperr.ErrForbidden
	}
	return actor, nil
}

// ChangeCredential verifies the current password before looking at the new
// one, so a caller without the password learns nothing about the policy.
func (g *Gate) ChangeCredential(ctx context.Context, actor auth.Actor, current, next string) error {
	cred, err := g.Store.GetCredential(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(cred.PasswordHash, current); err != nil {
		_ = g.Audit.Record(ctx, audit.Params{
			Action:     audit.ActionCredentialFailed,
			EntityType: audit.EntityUser,
			EntityID:   actor.ID,
			Actor:      &actor,
			Severity:   audit.SeverityWarning,
			Details:    map[string]any{"credential": "password", "reason": "bad_current_password"},
		})
		return fmt.Errorf("current password: %w", apperr.ErrInvalidCredential)
	}
	if err := passwordPolicy("newPassword", next); err != nil {
		return err
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := g.Store.UpdatePasswordHash(ctx, actor.ID, hash); err != nil {
		return err
	}

	_ = g.Audit.Record(ctx, audit.Params{
		Action:     audit.ActionCredentialChange,
		EntityType: audit.EntityUser,
		EntityID:   actor.ID,
		Actor:      &actor,
		Severity:   audit.SeverityCritical,
		Details:    map[string]any{"credential": "password"},
	})
	return nil
}

// Login checks the password and, when enrolled, the TOTP code. Every attempt is audited.
func (g *Gate) Login(ctx context.Context, email, password, mfaCode string) (LoginResult, error) {
	actor, cred, err := g.Store.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		_ = auth.CheckPassword(g.dummyHash, password)
		g.auditLoginFailure(ctx, nil, email, "unknown_email")
		return LoginResult{}, errBadLogin
	}
	if err != nil {
		g.auditLoginFailure(ctx, nil, email, "lookup_failed")
		return LoginResult{}, err
	}
	if err := auth.CheckPassword(cred.PasswordHash, password); err != nil {
		g.auditLoginFailure(ctx, &actor, email, "bad_password")
		return LoginResult{}, errBadLogin
	}
	if cred.MFAEnabled {
		if strings.TrimSpace(mfaCode) == "" {
			g.auditLoginFailure(ctx, &actor, email, "mfa_required")
			return LoginResult{}, ErrMFARequired
		}
		secret, err := g.Secrets.OpenString(cred.MFASecretEnc)
		if err != nil {
			g.auditLoginFailure(ctx, &actor, email, "mfa_secret_unreadable")
			return LoginResult{}, fmt.Errorf("open mfa secret: %w", err)
		}
		if !totp.Validate(strings.TrimSpace(mfaCode), secret) {
			g.auditLoginFailure(ctx, &actor, email, "bad_mfa_code")
			return LoginResult{}, errBadMFACode
		}
	}

	expires := g.now().Add(g.TokenTTL)
	token, err := auth.GenerateToken(g.JWTSecret, auth.Claims{UserID: actor.ID, Role: actor.Role}, g.TokenTTL)
	if err != nil {
		g.auditLoginFailure(ctx, &actor, email, "token_failed")
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	_ = g.Audit.Record(ctx, audit.Params{
		Action:     audit.ActionLogin,
		EntityType: audit.EntityUser,
		EntityID:   actor.ID,
		Actor:      &actor,
		Severity:   audit.SeverityInfo,
		Details:    map[string]any{"mfa": cred.MFAEnabled},
	})
	return LoginResult{Token: token, ExpiresAt: expires, User: actor}, nil
}

func (g *Gate) auditLoginFailure(ctx context.Context, actor *auth.Actor, email, reason string) {
	entityID := ""
	if actor != nil {
		entityID = actor.ID
	}
	_ = g.Audit.Record(ctx, audit.Params{
		Action:     audit.ActionLoginFailed,
		EntityType: audit.EntityUser,
		EntityID:   entityID,
		Actor:      actor,
		Severity:   audit.SeverityWarning,
		Details:    map[string]any{"email": strings.ToLower(strings.TrimSpace(email)), "reason": reason},
	})
}

// SetupMFA issues a new TOTP secret. MFA stays off until EnableMFA confirms a code.
func (g *Gate) SetupMFA(ctx context.Context, actor auth.Actor) (MFASetup, error) {
	if !g.Secrets.Configured() {
		return MFASetup{}, &apperr.ConfigurationError{Key: "DATA_ENCRYPTION_KEY", Detail: "required for mfa"}
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: actor.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, fmt.Errorf("generate mfa secret: %w", err)
	}
	sealed, err := g.Secrets.SealString(key.Secret())
	if err != nil {
		return MFASetup{}, fmt.Errorf("seal mfa secret: %w", err)
	}
	if err := g.Store.UpdateMFASecret(ctx, actor.ID, sealed); err != nil {
		return MFASetup{}, err
	}
	_ = g.Audit.Record(ctx, audit.Params{
		Action:     audit.ActionMFASetup,
		EntityType: audit.EntityUser,
		EntityID:   actor.ID,
		Actor:      &actor,
		Severity:   audit.SeverityCritical,
	})
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (g *Gate) EnableMFA(ctx context.Context, actor auth.Actor, code string) error {
	cred, err := g.Store.GetCredential(ctx, actor.ID)
	if err != nil {
		return err
	}
	if len(cred.MFASecretEnc) == 0 {
		return apperr.Validation("code", "mfa setup required before enabling")
	}
	secret, err := g.Secrets.OpenString(cred.MFASecretEnc)
	if err != nil {
		return fmt.Errorf("open mfa secret: %w", err)
	}
	if !totp.Validate(strings.TrimSpace(code), secret) {
		return fmt.Errorf("mfa code: %w", apperr.ErrInvalidCredential)
	}
	if err := g.Store.SetMFAEnabled(ctx, actor.ID, true); err != nil {
		return err
	}
	_ = g.Audit.Record(ctx, audit.Params{
		Action:     audit.ActionMFAEnable,
		EntityType: audit.EntityUser,
		EntityID:   actor.ID,
		Actor:      &actor,
		Severity:   audit.SeverityCritical,
	})
	return nil
}

// CreateUser is the administrator path for new accounts.
func (g *Gate) CreateUser(ctx context.Context, actor auth.Actor, c auth.UserCandidate) (auth.Actor, error) {
	if !auth.CanManageUsers(actor.Role) {
		return auth.Actor{}, apperr.ErrForbidden
	}
	if v := auth.ValidateUserCreation(c); !v.Valid {
		return auth.Actor{}, apperr.Validation("", v.Error)
	}
	if !c.Role.Valid() {
		return auth.Actor{}, apperr.Validation("role", "role must be STUDENT, TEACHER or ADMIN")
	}
	for _, tr := range c.TeacherRoles {
		if !tr.Valid() {
			return auth.Actor{}, apperr.Validation("teacherRoles", "unknown teacher role "+string(tr))
		}
	}
	if len(c.TeacherRoles) > 0 && c.Role != auth.RoleTeacher {
		return auth.Actor{}, apperr.Validation("teacherRoles", "only teachers may hold teacher roles")
	}
	if c.ICNumber != "" && !validation.IdentityNumber(c.ICNumber) {
		return auth.Actor{}, apperr.Validation("icNumber", "icNumber must be a 12 digit identity number")
	}
	if err := passwordPolicy("password", c.Password); err != nil {
		return auth.Actor{}, err
	}

	hash, err := auth.HashPassword(c.Password)
	if err != nil {
		return auth.Actor{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := g.Store.CreateUser(ctx, c, hash)
	if err != nil {
		return auth.Actor{}, err
	}
	_ = g.Audit.Record(ctx, audit.Params{
		Action:     audit.ActionUserCreate,
		EntityType: audit.EntityUser,
		EntityID:   created.ID,
		Actor:      &actor,
		Severity:   audit.SeverityInfo,
		Details:    map[string]any{"role": created.Role, "teacherRoles": created.TeacherRoles},
	})
	return created, nil
}

func passwordPolicy(field, pw string) error {
	if len(pw) < auth.MinPasswordLength {
		return apperr.Validation(field, fmt.Sprintf("%s must be at least %d characters", field, auth.MinPasswordLength))
	}
	if len(pw) > auth.MaxPasswordBytes {
		return apperr.Validation(field, fmt.Sprintf("%s must be at most %d bytes", field, auth.MaxPasswordBytes))
	}
	return nil
}

func (g *Gate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Profile re-reads the account so the response reflects the stored record.
func (g *Gate) Profile(ctx context.Context, actor auth.Actor) (auth.Actor, error) {
	return g.Store.GetActor(ctx, actor.ID)
}
