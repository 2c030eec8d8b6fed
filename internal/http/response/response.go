// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков: успешного конверта
// {"status":"OK","data":...} и конверта ошибки {"error":{...}}.
package response

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

// StatusOK значение статуса для успешного ответа.
const StatusOK = "OK"

// Сообщения ошибок уровня HTTP.
const (
	MsgValidation  = "Ошибка валидации входных данных"
	MsgInvalidBody = "Некорректное тело запроса"
	MsgInvalidID   = "Некорректный идентификатор"
)

// Response описывает успешный JSON-ответ сервера.
type Response struct {
	Status string `json:"status" example:"OK"`
	Data   any    `json:"data,omitempty"`
}

// ErrorBody тело ошибки.
type ErrorBody struct {
	Type      string         `json:"type" example:"NotFoundError"`
	Message   string         `json:"message" example:"Продукт не найден"`
	Details   map[string]any `json:"details"`
	RequestID string         `json:"request_id"`
}

// ErrorResponse структура ошибки, в том числе для Swagger-документации.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// OK пишет успешный ответ 200.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, OKWithData(data))
}

// Created пишет успешный ответ 201.
func Created(w http.ResponseWriter, r *http.Request, data any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, OKWithData(data))
}

// RequestID возвращает идентификатор запроса из chi middleware.RequestID
// или генерирует новый, если middleware не подключен.
func RequestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

// Fail пишет конверт ошибки. Код ответа определяется видом ошибки,
// детали внутренних ошибок клиенту не отдаются.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	appErr := classify(err)
	reqID := RequestID(r)

	switch appErr.Kind {
	case apperr.KindInternal, apperr.KindInfrastructure:
		log.Error("request failed",
			slog.String("request_id", reqID),
			slog.String("type", string(appErr.Kind)),
			sl.Err(err),
		)
	default:
		log.Info("request rejected",
			slog.String("request_id", reqID),
			slog.String("type", string(appErr.Kind)),
			slog.String("message", appErr.Message),
		)
	}

	details := appErr.Details
	if details == nil {
		details = map[string]any{}
	}
	render.Status(r, appErr.Kind.HTTPStatus())
	render.JSON(w, r, ErrorResponse{Error: ErrorBody{
		Type:      string(appErr.Kind),
		Message:   appErr.Message,
		Details:   details,
		RequestID: reqID,
	}})
}

// classify приводит ошибку к доменной. Нарушения ограничений БД, не обработанные
// сервисом, становятся конфликтом, переполнение числового столбца становится ошибкой
// валидации, сетевые ошибки становятся ошибкой инфраструктуры.
func classify(err error) *apperr.Error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var netErr net.Error
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperr.Conflict("Запись с такими данными уже существует").Wrap(err)
	case errors.Is(err, storage.ErrForeignKey):
		return apperr.Conflict("Ссылка на несуществующую запись").Wrap(err)
	case errors.Is(err, storage.ErrOutOfRange):
		return apperr.Validation(MsgValidation).Wrap(err)
	case errors.Is(err, driver.ErrBadConn), errors.As(err, &netErr):
		return apperr.Infrastructure("Ошибка подключения к базе данных", err)
	}
	return apperr.From(err)
}

// ValidationError формирует доменную ошибку валидации с перечнем нарушенных полей.
func ValidationError(errs validator.ValidationErrors) *apperr.Error {
	fields := make([]map[string]any, 0, len(errs))
	for _, err := range errs {
		fields = append(fields, map[string]any{
			"field":   err.Field(),
			"message": fieldMessage(err),
			"type":    err.ActualTag(),
		})
	}
	return apperr.Validation(MsgValidation).WithDetails(map[string]any{"validation_errors": fields})
}

func fieldMessage(err validator.FieldError) string {
	switch err.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is a required field", err.Field())
	case "email":
		return fmt.Sprintf("field %s must be a valid email", err.Field())
	case "numeric":
		return fmt.Sprintf("field %s can contain only numbers", err.Field())
	case "min", "gte", "gt":
		return fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param())
	case "max", "lte", "lt":
		return fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("field %s is not valid", err.Field())
	}
}

// Invalid возвращает ошибку валидации по результату validator. Не-валидаторные
// ошибки (например, InvalidValidationError) оборачиваются как есть.
func Invalid(err error) *apperr.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ValidationError(verrs)
	}
	return apperr.Validation(MsgValidation).Wrap(err)
}

// InvalidBody ошибка разбора JSON тела запроса.
func InvalidBody(err error) *apperr.Error {
	return apperr.Validation(MsgInvalidBody).
		WithDetails(map[string]any{"body": "invalid JSON"}).
		Wrap(err)
}

// InvalidID ошибка разбора идентификатора из пути.
func InvalidID(param string) *apperr.Error {
	return apperr.Validation(MsgInvalidID).WithDetails(map[string]any{param: "must be a positive integer"})
}
