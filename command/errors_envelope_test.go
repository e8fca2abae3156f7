package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-provision/core"
)

func TestProvisionAccountMessage_ValidateReturnsRichError(t *testing.T) {
	err := (ProvisionAccountMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ProvisionErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ProvisionErrorBadInput, rich.TextCode)
	}
}

func TestProvisionAccountCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *ProvisionAccountCommand
	err := cmd.Execute(context.Background(), ProvisionAccountMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.ProvisionErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.ProvisionErrorInternal, rich.TextCode)
	}
}
