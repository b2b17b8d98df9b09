package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/config"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, html})
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	users  *users.MemoryRepository
	tokens *refreshtokens.MemoryRepository
	tasks  *tasks.MemoryRepository
	mail   *fakeMailer
	clock  *clock
	codec  *auth.Codec
	cfg    *config.Config

	auth  *AuthService
	task  *TaskService
	admin *UserService
}

func newEnv(t *testing.T, mutate ...func(*config.Config)) *env {
	t.Helper()

	cfg := &config.Config{
		SecretKey:                         "test-secret",
		AccessTokenValidityDuration:       15 * time.Minute,
		RefreshTokenValidityDuration:      30 * 24 * time.Hour,
		VerificationTokenValidityDuration: 7 * 24 * time.Hour,
		AppURL:                            "http://app.test/",
		BcryptCost:                        bcrypt.MinCost,
	}
	for _, m := range mutate {
		m(cfg)
	}

	c := &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec, err := auth.NewCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.VerificationTokenValidityDuration)
	require.NoError(t, err)
	codec.WithClock(c.Now)

	e := &env{
		users:  users.NewMemoryRepository(),
		tokens: refreshtokens.NewMemoryRepository(),
		tasks:  tasks.NewMemoryRepository(),
		mail:   &fakeMailer{},
		clock:  c,
		codec:  codec,
		cfg:    cfg,
	}
	log := logging.Discard()
	e.auth = NewAuthService(e.users, e.tokens, codec, e.mail, cfg, log).WithClock(c.Now)
	e.task = NewTaskService(e.tasks, e.users, log)
	e.admin = NewUserService(e.users, log)
	return e
}

var errMailDown = errors.New("smtp down")
