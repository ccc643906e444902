package leaving

import "churchflow-backend/internal/pkg/apperr"

var (
	ErrMemberAndReasonRequired = apperr.Validation("Member ID and reason are required")
	ErrInvalidReason           = apperr.Validation("Reason must be one of: transfer, relocation, personal, other")
	ErrTransferChurchRequired  = apperr.Validation("Transfer church is required when reason is transfer")
	ErrInvalidLeavingDate      = apperr.Validation("Invalid leaving date")
	ErrInvalidIssueDate        = apperr.Validation("Invalid issue date")
	ErrMemberNotFound          = apperr.NotFound("Member not found or unauthorized")
	ErrActiveCertificateExists = apperr.Conflict("Member already has an active leaving certificate")

	ErrInvalidCertificateID = apperr.Validation("Invalid leaving certificate ID")
	ErrCertificateIDMissing = apperr.Validation("Leaving certificate ID is required")
	ErrCertificateNotFound  = apperr.NotFound("Leaving certificate not found")
	ErrInvalidStatusFilter  = apperr.Validation("Status must be one of: active, revoked, archived")
	ErrInvalidDateFilter    = apperr.Validation("Invalid date filter")
	ErrInvalidYear          = apperr.Validation("Invalid year")
)

const (
	msgUniqueNumberFailed = "Failed to generate unique certificate number"
	msgCreateFailed       = "Failed to create leaving certificate"
	msgFetchFailed        = "Failed to fetch leaving certificates"
	msgUpdateFailed       = "Failed to update leaving certificate"
	msgDeleteFailed       = "Failed to delete leaving certificate"
	msgGenerateFailed     = "Failed to generate certificate"
	msgStatsFailed        = "Failed to fetch statistics"
	msgSummaryFailed      = "Failed to fetch summary"
)
