package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// AnalysisType is the kind of processing requested from the webhook.
// It is passed through uninterpreted.
type AnalysisType string

const (
	AnalysisSummary   AnalysisType = "summary"
	AnalysisSentiment AnalysisType = "sentiment"
)

// AnalysisTypes returns the supported analysis types in display order
func AnalysisTypes() []AnalysisType {
	return []AnalysisType{AnalysisSummary, AnalysisSentiment}
}

// ParseAnalysisType parses a user supplied analysis type, ignoring case.
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch AnalysisType(strings.ToLower(strings.TrimSpace(s))) {
	case AnalysisSummary:
		return AnalysisSummary, nil
	case AnalysisSentiment:
		return AnalysisSentiment, nil
	default:
		return "", fmt.Errorf("unsupported analysis type: %q (supported: summary, sentiment)", s)
	}
}

// Title returns the heading shown above a result of this type.
func (t AnalysisType) Title() string {
	if t == AnalysisSentiment {
		return "Sentiment Analysis Results"
	}
	return "Summary Results"
}

// Label returns the short name used on mode toggles.
func (t AnalysisType) Label() string {
	if t == AnalysisSentiment {
		return "Sentiment"
	}
	return "Summary"
}

// Toggle returns the other analysis type.
func (t AnalysisType) Toggle() AnalysisType {
	if t == AnalysisSummary {
		return AnalysisSentiment
	}
	return AnalysisSummary
}

// AnalysisRequest is the body posted to the webhook. Text is sent exactly as typed.
type AnalysisRequest struct {
	Text         string       `json:"text" validate:"notblank"`
	AnalysisType AnalysisType `json:"analysisType" validate:"oneof=summary sentiment"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate checks the request and returns a *ValidationError describing the first problem.
func (r *AnalysisRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "request", Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Text":
		return &ValidationError{Field: "text", Message: MsgEmptyText}
	case "AnalysisType":
		return &ValidationError{Field: "analysisType", Message: fmt.Sprintf("unsupported analysis type: %q", r.AnalysisType)}
	default:
		return &ValidationError{Field: fe.Field(), Message: fe.Error()}
	}
}
