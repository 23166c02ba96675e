package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

// ChatParams is the body of a question against an existing session.
type ChatParams struct {
	SessionID string `json:"session_id" validate:"required,uuid4"`
	Message   string `json:"message" validate:"required"`
}

func (params *ChatParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

// UploadResult is returned after a successful upload-and-ingest.
type UploadResult struct {
	SessionID string   `json:"session_id"`
	Filenames []string `json:"filenames"`
	Role      string   `json:"role"`
}
