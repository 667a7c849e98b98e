package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/audit"
	"staffleave/internal/domain/auth"
)

type fakeStore struct {
	mu     sync.Mutex
	actors map[string]auth.Actor
	creds  map[string]Credential

	findErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{actors: map[string]auth.Actor{}, creds: map[string]Credential{}}
}

func (f *fakeStore) add(a auth.Actor, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actors[a.ID] = a
	f.creds[a.ID] = Credential{UserID: a.ID, PasswordHash: hash}
}

func (f *fakeStore) GetActor(_ context.Context, userID string) (auth.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.actors[userID]
	if !ok {
		return auth.Actor{}, apperr.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (auth.Actor, Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return auth.Actor{}, Credential{}, f.findErr
	}
	for _, a := range f.actors {
		if strings.EqualFold(a.Email, strings.TrimSpace(email)) {
			return a, f.creds[a.ID], nil
		}
	}
	return auth.Actor{}, Credential{}, apperr.ErrNotFound
}

func (f *fakeStore) GetCredential(_ context.Context, userID string) (Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[userID]
	if !ok {
		return Credential{}, apperr.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	return f.mutate(userID, func(c *Credential) { c.PasswordHash = hash })
}

func (f *fakeStore) UpdateMFASecret(_ context.Context, userID string, secretEnc []byte) error {
	return f.mutate(userID, func(c *Credential) {
		c.MFASecretEnc = secretEnc
		c.MFAEnabled = false
	})
}

func (f *fakeStore) SetMFAEnabled(_ context.Context, userID string, enabled bool) error {
	return f.mutate(userID, func(c *Credential) { c.MFAEnabled = enabled })
}

func (f *fakeStore) mutate(userID string, fn func(*Credential)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	fn(&c)
	f.creds[userID] = c
	return nil
}

func (f *fakeStore) CreateUser(_ context.Context, c auth.UserCandidate, hash string) (auth.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.actors {
		if strings.EqualFold(a.Email, c.Email) {
			return auth.Actor{}, apperr.Validation("email", "user already exists")
		}
	}
	a := auth.Actor{
		ID: uuid.NewString(), Name: c.Name, Email: c.Email, Role: c.Role,
		TeacherRoles: c.TeacherRoles, EmploymentType: c.EmploymentType, Level: c.Level,
	}
	f.actors[a.ID] = a
	f.creds[a.ID] = Credential{UserID: a.ID, PasswordHash: hash}
	return a, nil
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Params
}

func (r *recordingAuditor) Record(_ context.Context, p audit.Params) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, p)
	return nil
}

func (r *recordingAuditor) last() audit.Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return audit.Params{}
	}
	return r.entries[len(r.entries)-1]
}

func (r *recordingAuditor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
