package app_test

import (
	"context"
	"testing"

	"weekly-quiz-service/internal/domain"
)

func TestInviteAndRegister(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()

	_, err := env.contributors.CreateInvite(ctx, "wrong", "Noa")
	expectCode(t, err, domain.ErrUnauthorized)
	_, err = env.contributors.CreateInvite(ctx, adminSecret, " ")
	expectCode(t, err, domain.ErrMissingFields)

	invite, err := env.contributors.CreateInvite(ctx, adminSecret, "Noa")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if len(invite.InviteCode) != 32 || !invite.IsActive || invite.LoginID != "" {
		t.Fatalf("unexpected invite %+v", invite)
	}
	other, _ := env.contributors.CreateInvite(ctx, adminSecret, "Noa")
	if other.InviteCode == invite.InviteCode {
		t.Fatalf("invite codes must be unique")
	}

	_, err = env.contributors.Register(ctx, "unknown-code", "login-1", "", "")
	expectCode(t, err, domain.ErrInvalidInviteCode)
	_, err = env.contributors.Register(ctx, invite.InviteCode, "", "", "")
	expectCode(t, err, domain.ErrUnauthorized)

	reg, err := env.contributors.Register(ctx, invite.InviteCode, "login-1", "Noa Levi", "https://img/noa.png")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.AlreadyRegistered || reg.Contributor.LoginID != "login-1" || reg.Contributor.Name != "Noa Levi" {
		t.Fatalf("unexpected registration %+v", reg)
	}

	again, err := env.contributors.Register(ctx, invite.InviteCode, "login-1", "", "")
	if err != nil || !again.AlreadyRegistered {
		t.Fatalf("expected idempotent re-registration, got %+v err=%v", again, err)
	}

	_, err = env.contributors.Register(ctx, invite.InviteCode, "login-2", "", "")
	expectCode(t, err, domain.ErrInviteAlreadyUsed)

	me, err := env.contributors.Me(ctx, "login-1")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.ID != invite.ID || me.InviteCode != "" {
		t.Fatalf("expected own contributor without invite code, got %+v", me)
	}
	_, err = env.contributors.Me(ctx, "login-2")
	expectCode(t, err, domain.ErrContributorNotFound)
}

func TestOneLoginCannotRedeemTwoInvites(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()

	first, _ := env.contributors.CreateInvite(ctx, adminSecret, "Noa")
	second, _ := env.contributors.CreateInvite(ctx, adminSecret, "Gal")
	if _, err := env.contributors.Register(ctx, first.InviteCode, "login-1", "", ""); err != nil {
		t.Fatalf("register first: %v", err)
	}

	_, err := env.contributors.Register(ctx, second.InviteCode, "login-1", "", "")
	expectCode(t, err, domain.ErrLoginAlreadyBound)

	// The second invite stays redeemable by someone else.
	reg, err := env.contributors.Register(ctx, second.InviteCode, "login-2", "", "")
	if err != nil || reg.Contributor.ID != second.ID || reg.AlreadyRegistered {
		t.Fatalf("expected second invite still free, got %+v err=%v", reg, err)
	}
}

func TestDeactivatedInviteCannotRegister(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()

	invite, _ := env.contributors.CreateInvite(ctx, adminSecret, "Noa")
	if err := env.contributors.SetActive(ctx, adminSecret, invite.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err := env.contributors.Register(ctx, invite.InviteCode, "login-1", "", "")
	expectCode(t, err, domain.ErrInviteDeactivated)

	expectCode(t, env.contributors.SetActive(ctx, adminSecret, "missing", true), domain.ErrContributorNotFound)
	expectCode(t, env.contributors.SetActive(ctx, "", invite.ID, true), domain.ErrUnauthorized)
}

func TestDeleteContributorKeepsQuestions(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()

	invite, _ := env.contributors.CreateInvite(ctx, adminSecret, "Noa")
	if _, err := env.contributors.Register(ctx, invite.InviteCode, "login-1", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	req := triviaRequest()
	req.LoginID = "login-1"
	q, err := env.questions.Submit(ctx, req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := env.contributors.Delete(ctx, adminSecret, invite.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	expectCode(t, env.contributors.Delete(ctx, adminSecret, invite.ID), domain.ErrContributorNotFound)

	stored, err := env.store.GetQuestion(ctx, q.ID)
	if err != nil {
		t.Fatalf("question should survive contributor deletion: %v", err)
	}
	if stored.ContributorID != "" {
		t.Fatalf("expected contributor reference cleared, got %q", stored.ContributorID)
	}

	list, err := env.contributors.List(ctx, adminSecret)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty contributor list, got %+v err=%v", list, err)
	}
}
