package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1_048_576 // 1MB

var debug atomic.Bool

// SetDebug включает вывод текста внутренних ошибок в ответах 500.
func SetDebug(enabled bool) {
	debug.Store(enabled)
}

type successEnvelope struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result"`
}

type errorEnvelope struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Schema      string `json:"schema,omitempty"`
	Path        string `json:"path,omitempty"`
}

// readJSON декодирует тело запроса. Любая ошибка формы тела возвращается как *services.ValidationError.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return bodyError("", "json", fmt.Sprintf("body contains badly-formed JSON (at character %d)", syntaxError.Offset))
		case errors.Is(err, io.ErrUnexpectedEOF):
			return bodyError("", "json", "body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return bodyError(jsonPointer(unmarshalTypeError.Field), "type",
					fmt.Sprintf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field))
			}
			return bodyError("", "type", fmt.Sprintf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset))
		case errors.Is(err, io.EOF):
			return bodyError("", "json", "body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return bodyError(jsonPointer(field), "additionalProperties", fmt.Sprintf("body contains unknown key %q", field))
		case errors.As(err, &maxBytesError):
			return bodyError("", "maxLength", fmt.Sprintf("body must not be larger than %d bytes", maxBodyBytes))
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			// uuid.UUID и прочие TextUnmarshaler возвращают свои ошибки
			return bodyError("", "format", err.Error())
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return bodyError("", "json", "body must only contain a single JSON value")
	}
	return nil
}

func bodyError(path, schema, message string) error {
	return &services.ValidationError{Path: path, Schema: schema, Message: message}
}

func jsonPointer(field string) string {
	return "/" + strings.ReplaceAll(field, ".", "/")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func successResponse(w http.ResponseWriter, r *http.Request, status int, result interface{}) {
	if err := writeJSON(w, status, successEnvelope{OK: true, Result: result}, nil); err != nil {
		slog.Error("failed to write response", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, description string) {
	writeError(w, r, errorEnvelope{ErrorCode: status, Description: description})
}

func writeError(w http.ResponseWriter, r *http.Request, env errorEnvelope) {
	env.OK = false
	if err := writeJSON(w, env.ErrorCode, env, nil); err != nil {
		slog.Error("failed to write error response", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	if debug.Load() {
		message = err.Error()
	}
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func validationResponse(w http.ResponseWriter, r *http.Request, verr *services.ValidationError) {
	writeError(w, r, errorEnvelope{
		ErrorCode:   http.StatusUnprocessableEntity,
		Description: capitalize(verr.Message),
		Schema:      verr.Schema,
		Path:        verr.Path,
	})
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		validationResponse(w, r, verr)
		return
	}

	status := http.StatusInternalServerError
	switch {
	// Аутентификация
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrExpiredToken),
		errors.Is(err, services.ErrUnauthorizedAccessToAdminAPI),
		errors.Is(err, services.ErrNoResultsForAdminUser):
		status = http.StatusUnauthorized

	// Не найдено
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrBetNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrPhaseNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrRuleNotFound):
		status = http.StatusNotFound

	// Невалидные данные
	case errors.Is(err, services.ErrInvalidTeamID),
		errors.Is(err, services.ErrUnsatisfiedPasswordRequirements):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrValidationFailed):
		status = http.StatusUnprocessableEntity

	// Состояние
	case errors.Is(err, services.ErrLockedBets):
		status = http.StatusLocked
	case errors.Is(err, services.ErrNameAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, services.ErrNoAdminUser):
		slog.Error("admin user is missing", slog.String("path", r.URL.Path))

	default:
		serverErrorResponse(w, r, err)
		return
	}

	errorResponse(w, r, status, capitalize(err.Error()))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// uuidParam читает UUID из параметра пути.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, bodyError("/"+name, "uuid", fmt.Sprintf("%s is not a valid uuid: %s", name, raw))
	}
	return id, nil
}

// langFromRequest читает ?lang, по умолчанию французский.
func langFromRequest(r *http.Request) (models.Lang, error) {
	raw := r.URL.Query().Get("lang")
	if raw == "" {
		return models.DefaultLang, nil
	}
	lang := models.Lang(raw)
	if !lang.IsValid() {
		return "", bodyError("/lang", "enum", fmt.Sprintf("lang must be one of fr, en, got %q", raw))
	}
	return lang, nil
}
