package service

import (
	"context"
	"testing"

	"hermes-sync-api/internal/model"
)

func TestValidateExtensionUserRejectsMalformedEmail(t *testing.T) {
	svc := NewAccountService(&fakeAccountRepo{accounts: map[string]*model.Account{}})

	result := svc.ValidateExtensionUser(context.Background(), "", "extension")
	if result.Valid || result.Reason != "email_required" {
		t.Fatalf("expected email_required, got %+v", result)
	}

	result = svc.ValidateExtensionUser(context.Background(), "not an email", "extension")
	if result.Valid || result.Reason != "invalid_format" {
		t.Fatalf("expected invalid_format, got %+v", result)
	}
}

func TestValidateExtensionUserDistinguishesFailures(t *testing.T) {
	svc := NewAccountService(&fakeAccountRepo{accounts: map[string]*model.Account{
		"inactive@example.com": {Email: "inactive@example.com", IsActive: false},
		"noext@example.com":    {Email: "noext@example.com", IsActive: true, ExtensionEnabled: false},
	}})

	result := svc.ValidateExtensionUser(context.Background(), "ghost@example.com", "extension")
	if result.Valid || result.Reason != "not_found" {
		t.Fatalf("expected not_found, got %+v", result)
	}

	result = svc.ValidateExtensionUser(context.Background(), "inactive@example.com", "extension")
	if result.Valid || result.Reason != "inactive" {
		t.Fatalf("expected inactive, got %+v", result)
	}

	result = svc.ValidateExtensionUser(context.Background(), "noext@example.com", "extension")
	if result.Valid || result.Reason != "extension_disabled" {
		t.Fatalf("expected extension_disabled, got %+v", result)
	}
}

func TestValidateExtensionUserReturnsPlanFeatures(t *testing.T) {
	svc := NewAccountService(&fakeAccountRepo{accounts: map[string]*model.Account{
		"archon@example.com": {
			Email:            "archon@example.com",
			Plan:             model.PlanArchon,
			IsActive:         true,
			ExtensionEnabled: true,
		},
	}})

	// Lookup is case-insensitive.
	result := svc.ValidateExtensionUser(context.Background(), "Archon@Example.com", "extension")
	if !result.Valid {
		t.Fatalf("expected valid account, got %+v", result)
	}
	if result.Features.MaxItems != -1 {
		t.Fatalf("expected unlimited items for top plan, got %d", result.Features.MaxItems)
	}
}
