package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tgienger/tasktracker/internal/errs"
)

// Mailer delivers a plain text message
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Gate guards access to the task tracker. It is independent of the task data.
type Gate struct {
	store    Store
	mailer   Mailer
	log      *zap.Logger
	validate *validator.Validate
	newRef   func() string
}

// NewGate builds a gate over store. mailer may be nil, in which case
// ForgotPassword cannot deliver and returns ErrExternalService.
func NewGate(store Store, mailer Mailer, log *zap.Logger) *Gate {
	return &Gate{
		store:    store,
		mailer:   mailer,
		log:      log,
		validate: validator.New(),
		newRef:   func() string { return uuid.NewString() },
	}
}

// Register adds a new user
func (g *Gate) Register(username, password string) error {
	if err := g.store.Add(username, password); err != nil {
		g.log.Info("registration rejected", zap.String("username", username), zap.Error(err))
		return err
	}
	g.log.Info("user registered", zap.String("username", username))
	return nil
}

// Login succeeds only for an exact registered pair
func (g *Gate) Login(username, password string) error {
	if err := g.store.Verify(username, password); err != nil {
		g.log.Warn("login failed", zap.String("username", username))
		return err
	}
	g.log.Info("login succeeded", zap.String("username", username))
	return nil
}

// ForgotPassword sends a notification that a reset was requested. No
// password is changed and the message carries no reset link, only a request
// reference that is returned to the caller.
func (g *Gate) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := g.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: a valid email address is required", errs.ErrValidation)
	}
	if g.mailer == nil {
		return "", fmt.Errorf("%w: no mail relay configured", errs.ErrExternalService)
	}

	ref := g.newRef()
	if err := g.mailer.Send(ctx, email, resetSubject, resetBody(ref)); err != nil {
		g.log.Error("reset notification failed", zap.String("email", email), zap.String("reference", ref), zap.Error(err))
		return "", fmt.Errorf("%w: failed to send reset notification: %w", errs.ErrExternalService, err)
	}

	g.log.Info("reset notification sent", zap.String("email", email), zap.String("reference", ref))
	return ref, nil
}

const resetSubject = "Task Tracker password reset request"

func resetBody(ref string) string {
	return "A password reset was requested for your Task Tracker account.\n\n" +
		"Task Tracker keeps credentials on this computer only, so there is no online reset. " +
		"Register a new account or ask the owner of this machine for help.\n\n" +
		"Request reference: " + ref + "\n"
}
