package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"weekly-quiz-service/internal/domain"
)

// inviteCodeBytes gives 128 bits of randomness per invite code.
const inviteCodeBytes = 16

// Registration is the outcome of redeeming an invite code.
type Registration struct {
	Contributor       domain.Contributor `json:"contributor"`
	AlreadyRegistered bool               `json:"alreadyRegistered"`
}

// ContributorService manages invite-based contributor identities.
type ContributorService struct {
	contributors ContributorRepository
	admin        AdminGate
	clock        Clock
	log          *logrus.Entry
}

func NewContributorService(contributors ContributorRepository, admin AdminGate, clock Clock, log *logrus.Entry) *ContributorService {
	return &ContributorService{contributors: contributors, admin: admin, clock: clock, log: log}
}

// CreateInvite creates an active, unbound contributor with a fresh invite code.
func (s *ContributorService) CreateInvite(ctx context.Context, secret, name string) (domain.Contributor, error) {
	if err := s.admin.Check(secret); err != nil {
		return domain.Contributor{}, err
	}
	return s.createInvite(ctx, name)
}

// CreateInviteUnchecked is used by the operator CLI, which runs with store access.
func (s *ContributorService) CreateInviteUnchecked(ctx context.Context, name string) (domain.Contributor, error) {
	return s.createInvite(ctx, name)
}

func (s *ContributorService) createInvite(ctx context.Context, name string) (domain.Contributor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Contributor{}, domain.ErrMissingFields
	}
	code, err := newInviteCode()
	if err != nil {
		return domain.Contributor{}, err
	}
	c := domain.Contributor{
		ID:         newID(),
		InviteCode: code,
		IsActive:   true,
		Name:       name,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.contributors.CreateContributor(ctx, c); err != nil {
		return domain.Contributor{}, err
	}
	s.log.WithField("contributor_id", c.ID).Info("invite created")
	return c, nil
}

// Register binds loginID to the contributor behind inviteCode. Repeating the
// call with the same login is idempotent.
func (s *ContributorService) Register(ctx context.Context, inviteCode, loginID, name, photo string) (Registration, error) {
	if loginID == "" {
		return Registration{}, domain.ErrUnauthorized
	}
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return Registration{}, domain.ErrMissingFields
	}

	c, err := s.contributors.GetContributorByCode(ctx, inviteCode)
	if errors.Is(err, domain.ErrContributorNotFound) {
		return Registration{}, domain.ErrInvalidInviteCode
	}
	if err != nil {
		return Registration{}, err
	}
	if !c.IsActive {
		return Registration{}, domain.ErrInviteDeactivated
	}
	if c.LoginID == loginID {
		return Registration{Contributor: c, AlreadyRegistered: true}, nil
	}
	if c.LoginID != "" {
		return Registration{}, domain.ErrInviteAlreadyUsed
	}
	switch _, err := s.contributors.GetContributorByLogin(ctx, loginID); {
	case err == nil:
		return Registration{}, domain.ErrLoginAlreadyBound
	case !errors.Is(err, domain.ErrContributorNotFound):
		return Registration{}, err
	}

	if name = strings.TrimSpace(name); name == "" {
		name = c.Name
	}
	bound, err := s.contributors.BindContributor(ctx, c.ID, loginID, name, photo)
	if err != nil {
		return Registration{}, err
	}
	if !bound {
		// Someone redeemed the code between our read and the conditional update.
		current, err := s.contributors.GetContributor(ctx, c.ID)
		if err != nil {
			return Registration{}, err
		}
		switch current.LoginID {
		case loginID:
			return Registration{Contributor: current, AlreadyRegistered: true}, nil
		case "":
			// The invite is still free, so the login got bound elsewhere meanwhile.
			return Registration{}, domain.ErrLoginAlreadyBound
		}
		return Registration{}, domain.ErrInviteAlreadyUsed
	}

	c.LoginID, c.Name, c.PhotoURL = loginID, name, photo
	s.log.WithField("contributor_id", c.ID).Info("contributor registered")
	return Registration{Contributor: c}, nil
}

// Me returns the contributor bound to loginID.
func (s *ContributorService) Me(ctx context.Context, loginID string) (domain.Contributor, error) {
	if loginID == "" {
		return domain.Contributor{}, domain.ErrUnauthorized
	}
	c, err := s.contributors.GetContributorByLogin(ctx, loginID)
	if err != nil {
		return domain.Contributor{}, err
	}
	c.InviteCode = ""
	return c, nil
}

// SetActive toggles a contributor. Previously approved questions are unaffected.
func (s *ContributorService) SetActive(ctx context.Context, secret, id string, active bool) error {
	if err := s.admin.Check(secret); err != nil {
		return err
	}
	if id == "" {
		return domain.ErrMissingFields
	}
	if err := s.contributors.SetContributorActive(ctx, id, active); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"contributor_id": id, "active": active}).Info("contributor updated")
	return nil
}

// Delete removes a contributor; their questions keep no contributor reference.
func (s *ContributorService) Delete(ctx context.Context, secret, id string) error {
	if err := s.admin.Check(secret); err != nil {
		return err
	}
	if id == "" {
		return domain.ErrMissingFields
	}
	if err := s.contributors.DeleteContributor(ctx, id); err != nil {
		return err
	}
	s.log.WithField("contributor_id", id).Info("contributor deleted")
	return nil
}

// List returns every contributor for the admin view.
func (s *ContributorService) List(ctx context.Context, secret string) ([]domain.Contributor, error) {
	if err := s.admin.Check(secret); err != nil {
		return nil, err
	}
	return s.contributors.ListContributors(ctx)
}

func newInviteCode() (string, error) {
	buf := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
