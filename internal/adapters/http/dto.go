package httpadapter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type profileRequest struct {
	CompanyName string `json:"company_name" validate:"max=200"`
	Industry    string `json:"industry" validate:"max=64"`
	CompanySize string `json:"company_size" validate:"max=16"`
	Address     string `json:"address" validate:"max=500"`
	Website     string `json:"website" validate:"omitempty,url"`
	Summary     string `json:"summary" validate:"max=4000"`
}

type createDocumentRequest struct {
	TypeID  string `json:"type_id" validate:"required,max=128"`
	Kind    string `json:"kind" validate:"omitempty,oneof=policy form"`
	Content string `json:"content"`
}

type saveDocumentRequest struct {
	TypeID  string `json:"type_id" validate:"required,max=128"`
	Kind    string `json:"kind" validate:"omitempty,oneof=policy form"`
	Content string `json:"content"`
	Version int    `json:"version" validate:"gte=0"`
}

type catalogResponse struct {
	Documents any `json:"documents"`
}

type roadmapResponse struct {
	CompanyID string `json:"company_id"`
	Items     any    `json:"items"`
	Status    any    `json:"status"`
}

type documentListResponse struct {
	Documents any `json:"documents"`
}

func extractValidationErrors(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, fmt.Sprintf("validation error: %s - %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return strings.Join(messages, "; ")
}
