package businessflow_test

import (
	"fmt"
	"testing"

	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/stretchr/testify/assert"
)

func TestCodeOfResolvesWrappedSentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "TerminalSuggestionUnderOperationCode",
			err:  businessflow.NewBusinessError("DECIDE_FAILED", "Failed to decide on suggestion", businessflow.ErrSuggestionTerminal),
			want: businessflow.CodeConflict,
		},
		{
			name: "PermissionDeniedUnderOperationCode",
			err:  businessflow.NewBusinessError("APPROVE_FORBIDDEN", "Caller cannot approve suggestions", businessflow.ErrPermissionDenied),
			want: businessflow.CodeUnauthorized,
		},
		{
			name: "EmptyChainUnderOperationCode",
			err:  businessflow.NewBusinessError("SUBMIT_FAILED", "Failed to submit suggestion", businessflow.ErrApprovalChainEmpty),
			want: businessflow.CodeConfiguration,
		},
		{
			name: "ValidationSentinelUnderOperationCode",
			err:  businessflow.NewBusinessError("SUBMIT_VALIDATION_FAILED", "Suggestion validation failed", businessflow.ErrFinalPriceBelowCost),
			want: businessflow.CodeValidation,
		},
		{
			name: "NotFoundUnderNestedBusinessErrors",
			err: businessflow.NewBusinessError("BATCH_DECIDE_FAILED", "Failed to load batch",
				businessflow.NewBusinessError("SUGGESTION_LOOKUP_FAILED", "Lookup failed", businessflow.ErrSuggestionNotFound)),
			want: businessflow.CodeNotFound,
		},
		{
			name: "SentinelBehindPlainWrap",
			err:  businessflow.NewBusinessError("DECIDE_FAILED", "Failed to decide on suggestion", fmt.Errorf("transaction rolled back: %w", businessflow.ErrSuggestionAlreadyDecided)),
			want: businessflow.CodeConflict,
		},
		{
			name: "TaxonomyCodeKept",
			err:  businessflow.NewBusinessError(businessflow.CodeValidation, "Bad input", nil),
			want: businessflow.CodeValidation,
		},
		{
			name: "BareSentinel",
			err:  businessflow.ErrNotLevelApprover,
			want: businessflow.CodeUnauthorized,
		},
		{
			name: "UnknownErrorFallsBackToInternal",
			err:  businessflow.NewBusinessError("DECIDE_FAILED", "Failed to decide on suggestion", fmt.Errorf("connection reset")),
			want: businessflow.CodeInternal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, businessflow.CodeOf(tc.err))
		})
	}
}
