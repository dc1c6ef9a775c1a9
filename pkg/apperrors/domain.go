package apperrors

import (
	"net/http"
)

// ErrNotFound converts a repository not-found error into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into a 409.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrExternalService(err error, domain, message string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, message, http.StatusBadGateway)
}

// --- Catalog ---

var ErrCategoryNotFound = New(CodeNotFound, "catalog", "Categoria non trovata", http.StatusNotFound)

var ErrVideoNotFound = New(CodeNotFound, "catalog", "Video non trovato", http.StatusNotFound)

var ErrDocumentNotFound = New(CodeNotFound, "catalog", "Documento non trovato", http.StatusNotFound)

var ErrPlaylistNotFound = New(CodeNotFound, "catalog", "Playlist non trovata", http.StatusNotFound)

var ErrMediaNotFound = New(CodeNotFound, "catalog", "Contenuto non trovato", http.StatusNotFound)

var ErrCategoryCycle = New(CodeInvalidOperation, "catalog", "A category cannot be its own ancestor", http.StatusBadRequest)

// --- Uploads ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Registration ---

// ErrInvalidSubscriberCredentials is shown verbatim on the login page.
var ErrInvalidSubscriberCredentials = New(
	CodeInvalidCredentials,
	"registration",
	"errore: matricola o email non validi",
	http.StatusUnauthorized,
)

var ErrSubscriberNotFound = New(CodeNotFound, "registration", "Utente non trovato", http.StatusNotFound)

var ErrEventNotFound = New(CodeNotFound, "registration", "Evento non trovato", http.StatusNotFound)

// --- Auth ---

var ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)

var ErrInvalidToken = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)

var ErrInsufficientPermissions = New(CodeForbidden, "auth", "Insufficient permissions", http.StatusForbidden)

var ErrUserDisabled = New(CodeForbidden, "auth", "Your account has been disabled", http.StatusForbidden)

// --- Email ---

var ErrEmailUnavailable = New(CodeExternalServiceError, "email", "Email gateway unavailable", http.StatusServiceUnavailable)
