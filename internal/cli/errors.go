package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/model"
)

// Error codes for structured error responses
const (
	ErrCodeRecordNotFound = "RECORD_NOT_FOUND"
	ErrCodeRecordExists   = "RECORD_EXISTS"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNoDataDir      = "NO_DATA_DIR"
	ErrCodeFetchFailed    = "FETCH_FAILED"
	ErrCodeMutateFailed   = "MUTATION_FAILED"
)

// JSONError represents a structured error response for --json output
type JSONError struct {
	Error   bool                   `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ExitWithError outputs an error message and exits.
// If --json flag is set, outputs structured JSON error to stdout.
// Otherwise outputs plain text to stderr.
func ExitWithError(code int, errCode, message string, details map[string]interface{}) {
	if GetJSONOutput() {
		errResp := JSONError{
			Error:   true,
			Code:    errCode,
			Message: message,
			Details: details,
		}
		data, _ := json.Marshal(errResp)
		fmt.Println(string(data))
	} else {
		fmt.Fprintln(os.Stderr, "Error:", message)
	}
	Exit(code)
}

// ExitRecordNotFound outputs a record not found error
func ExitRecordNotFound(recordID string) {
	ExitWithError(1, ErrCodeRecordNotFound,
		fmt.Sprintf("record '%s' not found", recordID),
		map[string]interface{}{"record_id": recordID})
}

// ExitValidationError outputs a validation error
func ExitValidationError(message string, details map[string]interface{}) {
	ExitWithError(2, ErrCodeValidation, message, details)
}

// ExitNoDataDir outputs an error when no data directory is found
func ExitNoDataDir() {
	ExitWithError(1, ErrCodeNoDataDir,
		"no .backoffice directory found (run 'backoffice init')",
		nil)
}

// ExitFetchFailed outputs an error when the collection could not be loaded
func ExitFetchFailed(collectionName, message string) {
	ExitWithError(3, ErrCodeFetchFailed,
		fmt.Sprintf("failed to load %s: %s", collectionName, message),
		map[string]interface{}{"collection": collectionName})
}

// ExitMutationFailed outputs an error when some mutations in a batch failed
func ExitMutationFailed(message string, details map[string]interface{}) {
	ExitWithError(4, ErrCodeMutateFailed, message, details)
}

// exitForMutationError maps a failed mutation to an exit code. Errors that
// are not the user's fault are returned for cobra to print.
func exitForMutationError(err error, recordID string) error {
	switch {
	case errors.Is(err, model.ErrRecordNotFound), errors.Is(err, collection.ErrUnknownRecord):
		ExitRecordNotFound(recordID)
	case errors.Is(err, model.ErrRecordExists):
		ExitWithError(1, ErrCodeRecordExists,
			fmt.Sprintf("record '%s' already exists", recordID),
			map[string]interface{}{"record_id": recordID})
	case errors.Is(err, model.ErrInvalidPatch),
		errors.Is(err, model.ErrEmptyValue),
		errors.Is(err, model.ErrNegativeValue),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidID),
		errors.Is(err, collection.ErrAdjustUnsupported):
		ExitValidationError(err.Error(), map[string]interface{}{"record_id": recordID})
	default:
		return err
	}
	return nil
}
