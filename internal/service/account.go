package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"hermes-sync-api/internal/model"
	"hermes-sync-api/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AccountService is the auth collaborator: it confirms user identities
// against the accounts database and exposes plan features. Identities
// always come from the database, never from tables embedded in code.
type AccountService struct {
	repo repository.AccountRepository
}

// NewAccountService creates a new account service.
// Returns nil if repo is nil (required dependency).
func NewAccountService(repo repository.AccountRepository) *AccountService {
	if repo == nil {
		return nil
	}
	return &AccountService{repo: repo}
}

// ValidationResult is the outcome of an extension user validation.
type ValidationResult struct {
	Valid    bool
	Reason   string
	Message  string
	Account  *model.Account
	Features model.PlanFeatures
}

// ValidateExtensionUser checks whether an email belongs to an active
// account with the extension enabled. Each failure mode has its own
// reason so the extension can show a specific message.
func (s *AccountService) ValidateExtensionUser(ctx context.Context, email, source string) ValidationResult {
	if email == "" {
		return ValidationResult{Valid: false, Reason: "email_required", Message: "Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return ValidationResult{Valid: false, Reason: "invalid_format", Message: "Invalid email format"}
	}

	acc, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(email))
	if err != nil {
		log.Printf("[AccountService] Validation failed for %s (source=%s): not found", email, source)
		return ValidationResult{Valid: false, Reason: "not_found", Message: "This email is not associated with an active account"}
	}
	if !acc.IsActive {
		log.Printf("[AccountService] Validation failed for %s: account inactive", email)
		return ValidationResult{Valid: false, Reason: "inactive", Message: "This account is deactivated"}
	}
	if !acc.ExtensionEnabled {
		log.Printf("[AccountService] Validation failed for %s: extension disabled", email)
		return ValidationResult{Valid: false, Reason: "extension_disabled", Message: "The extension is not enabled for this account"}
	}

	log.Printf("[AccountService] Validated %s (source=%s, plan=%s)", email, source, acc.Plan)
	return ValidationResult{
		Valid:    true,
		Account:  acc,
		Features: model.FeaturesForPlan(acc.Plan),
	}
}

// Login validates credentials for session token generation.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.Account, error) {
	return s.repo.ValidateCredentials(ctx, strings.ToLower(email), password)
}
