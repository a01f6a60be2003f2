package horoscope

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/starford/daivaya/internal/apperr"
	"github.com/starford/daivaya/internal/archive"
	"github.com/starford/daivaya/internal/checksum"
	"github.com/starford/daivaya/internal/identity"
	"github.com/starford/daivaya/internal/models"
	"github.com/starford/daivaya/internal/sse"
	"github.com/starford/daivaya/internal/store"
)

// Register creates an account and grants the signup credits.
func (s *Service) Register(ctx context.Context, email, password string) (identity.User, error) {
	u, err := s.Identity.SignUp(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return identity.User{}, s.fail("register", err)
	}
	if err := s.EnsureAccount(ctx, u); err != nil {
		return identity.User{}, s.fail("register", err)
	}
	return u, nil
}

// EnsureAccount grants the signup credits to u once.
func (s *Service) EnsureAccount(ctx context.Context, u identity.User) error {
	if s.SignupGrant <= 0 {
		return nil
	}
	if _, err := s.Ledger.Grant(ctx, u.ID, s.SignupGrant, "signup:"+u.ID, "signup grant"); err != nil {
		return fmt.Errorf("horoscope: signup grant: %w", err)
	}
	return nil
}

// Login signs in with a password.
func (s *Service) Login(ctx context.Context, email, password string) (identity.Session, error) {
	sess, err := s.Identity.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return identity.Session{}, s.fail("login", err)
	}
	return sess, nil
}

// ResetPassword sends a recovery mail.
func (s *Service) ResetPassword(ctx context.Context, email, redirectTo string) error {
	if err := s.Identity.ResetPassword(ctx, strings.TrimSpace(email), redirectTo); err != nil {
		return s.fail("reset_password", err)
	}
	return nil
}

// DeductPDF charges the PDF export price once per key. A replayed key
// returns the original entry.
func (s *Service) DeductPDF(ctx context.Context, u identity.User, key string) (models.LedgerEntry, error) {
	const op = "deduct_pdf_credit"
	reqID := requestID(op, u.ID, key)
	_, settled, err := s.Ledger.EntryByRequest(ctx, reqID)
	if err != nil {
		return models.LedgerEntry{}, s.fail(op, err)
	}
	e, err := s.Ledger.Charge(ctx, u.ID, s.Prices.PDF, reqID, op)
	if err != nil {
		return models.LedgerEntry{}, s.fail(op, err)
	}
	if settled {
		return e, nil
	}
	s.Metrics.CreditsCharged("pdf", int64(s.Prices.PDF))
	s.Events.Publish(u.ID, sse.Event{Type: sse.CreditsCharged, Data: map[string]any{
		"amount":  s.Prices.PDF,
		"balance": e.Balance,
		"memo":    op,
	}})
	return e, nil
}

// Credits is the balance of a user with its latest movements.
type Credits struct {
	Balance int                  `json:"balance"`
	Entries []models.LedgerEntry `json:"entries"`
	Prices  map[string]int       `json:"prices"`
}

// Credits returns the user's balance and recent ledger entries.
func (s *Service) Credits(ctx context.Context, u identity.User, limit int) (*Credits, error) {
	bal, err := s.Ledger.Balance(ctx, u.ID)
	if err != nil {
		return nil, s.fail("credits", err)
	}
	entries, err := s.Ledger.Entries(ctx, u.ID, limit)
	if err != nil {
		return nil, s.fail("credits", err)
	}
	return &Credits{
		Balance: bal,
		Entries: entries,
		Prices: map[string]int{
			models.KindReading:  s.Prices.Reading,
			models.KindPorondam: s.Prices.Porondam,
			"pdf":               s.Prices.PDF,
		},
	}, nil
}

// ReadingPage is one page of a user's archived readings.
type ReadingPage struct {
	Items []models.ReadingMeta `json:"items"`
	Total int                  `json:"total"`
}

// ListReadings returns the user's readings, newest first.
func (s *Service) ListReadings(ctx context.Context, u identity.User, limit, offset int) (*ReadingPage, error) {
	items, total, err := s.Readings.ListReadings(ctx, u.ID, limit, offset)
	if err != nil {
		return nil, s.fail("list_readings", err)
	}
	return &ReadingPage{Items: items, Total: total}, nil
}

// GetReading returns one archived reading of the user.
func (s *Service) GetReading(ctx context.Context, u identity.User, id string) (*models.Reading, error) {
	if _, err := s.Readings.GetReading(ctx, u.ID, id); err != nil {
		return nil, s.fail("get_reading", err)
	}
	r, err := s.loadReading(u.ID, id)
	if err != nil {
		return nil, s.fail("get_reading", err)
	}
	return r, nil
}

func (s *Service) archiveReading(ctx context.Context, r models.Reading) error {
	data, err := archive.Encode(r)
	if err != nil {
		return err
	}
	if err := s.Archive.Write(archive.PathFor(r.UserID, r.ID), data); err != nil {
		return err
	}
	return s.Readings.UpsertReading(ctx, store.ReadingRow{
		ID:        r.ID,
		UserID:    r.UserID,
		Kind:      r.Kind,
		Title:     r.Title,
		Checksum:  checksum.Sum(data),
		CreatedAt: r.CreatedAt,
	})
}

func (s *Service) loadReading(userID, id string) (*models.Reading, error) {
	data, err := s.Archive.Read(archive.PathFor(userID, id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.New(apperr.ErrNotFound, "reading not found")
	}
	if err != nil {
		return nil, err
	}
	r, err := archive.Decode(data)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, apperr.New(apperr.ErrNotFound, "reading not found")
	}
	r.Checksum = checksum.Sum(data)
	return &r, nil
}
