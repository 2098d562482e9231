package validation

import (
	"net/url"
	"regexp"
	"strings"

	"studydesk/internal/domain"
)

const (
	maxSubjectNameLength = 100
	maxSourceLabelLength = 255
	maxQuestionLength    = 2000
)

// Validator provides request validation functionality
type Validator struct {
	maxContentBytes int
}

// NewValidator creates a new validator instance
func NewValidator(maxContentBytes int) *Validator {
	return &Validator{maxContentBytes: maxContentBytes}
}

// ValidateAnalyzeTextRequest validates pasted or uploaded lecture content
func (v *Validator) ValidateAnalyzeTextRequest(content, sourceLabel string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(content) == "" {
		errors = append(errors, domain.NewMissingFieldError("content"))
	} else if v.maxContentBytes > 0 && len(content) > v.maxContentBytes {
		errors = append(errors, domain.NewOutOfRangeError("content", len(content), 1, v.maxContentBytes))
	}

	if len(sourceLabel) > maxSourceLabelLength {
		errors = append(errors, domain.NewOutOfRangeError("source_label", len(sourceLabel), 0, maxSourceLabelLength))
	}

	return errors
}

// ValidateAnalyzeURLRequest validates a lecture video link
func (v *Validator) ValidateAnalyzeURLRequest(rawURL string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(rawURL) == "" {
		errors = append(errors, domain.NewMissingFieldError("url"))
		return errors
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errors = append(errors, domain.NewInvalidFormatError("url", rawURL))
	}

	return errors
}

// ValidateSubjectName validates a subject name for create and rename
func (v *Validator) ValidateSubjectName(name string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(name) == "" {
		errors = append(errors, domain.NewMissingFieldError("name"))
	} else if len(name) > maxSubjectNameLength {
		errors = append(errors, domain.NewOutOfRangeError("name", len(name), 1, maxSubjectNameLength))
	}

	return errors
}

// ValidateID validates a path parameter that must be a ULID
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError(field, id))
	}

	return errors
}

// ValidateSaveMaterialRequest validates a save material request
func (v *Validator) ValidateSaveMaterialRequest(subjectID, sourceType string, hasAnalysis bool) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, v.ValidateID("subject_id", subjectID)...)

	if sourceType != string(domain.SourceTypeFile) && sourceType != string(domain.SourceTypeURL) {
		errors = append(errors, domain.NewInvalidFormatError("source_type", sourceType))
	}

	if !hasAnalysis {
		errors = append(errors, domain.NewMissingFieldError("analysis"))
	}

	return errors
}

// ValidateChatRequest validates a follow-up question about a material
func (v *Validator) ValidateChatRequest(question string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(question) == "" {
		errors = append(errors, domain.NewMissingFieldError("question"))
	} else if len(question) > maxQuestionLength {
		errors = append(errors, domain.NewOutOfRangeError("question", len(question), 1, maxQuestionLength))
	}

	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, Crockford's Base32
	if len(s) != 26 {
		return false
	}
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
