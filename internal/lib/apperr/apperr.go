// Package apperr описывает доменные ошибки приложения. Каждая ошибка несёт вид (Kind),
// по которому HTTP-слой выбирает код ответа и тип в теле ошибки, человекочитаемое
// сообщение и необязательные детали. Внутренняя причина хранится в Err и клиенту не отдаётся.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind вид доменной ошибки.
type Kind string

// Виды ошибок.
const (
	KindAuthentication Kind = "AuthenticationError"
	KindAuthorization  Kind = "AuthorizationError"
	KindNotFound       Kind = "NotFoundError"
	KindValidation     Kind = "ValidationError"
	KindBusinessRule   Kind = "BusinessRuleViolation"
	KindConflict       Kind = "IntegrityError"
	KindRateLimit      Kind = "RateLimitExceeded"
	KindInfrastructure Kind = "InfrastructureError"
	KindInternal       Kind = "InternalError"
)

// HTTPStatus возвращает HTTP-код для вида ошибки.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBusinessRule:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error доменная ошибка.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по виду и сообщению, что позволяет использовать
// заранее объявленные значения как sentinel-ошибки.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithDetails возвращает копию ошибки с добавленными деталями.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	for k, v := range details {
		cp.Details[k] = v
	}
	return &cp
}

// Wrap возвращает копию ошибки с внутренней причиной.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// New создаёт ошибку заданного вида.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Authentication ошибка аутентификации.
func Authentication(message string) *Error { return New(KindAuthentication, message) }

// Authorization недостаточно прав.
func Authorization(message string) *Error { return New(KindAuthorization, message) }

// NotFound запись не найдена.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Validation некорректные входные данные.
func Validation(message string) *Error { return New(KindValidation, message) }

// BusinessRule нарушение бизнес-правила.
func BusinessRule(message string) *Error { return New(KindBusinessRule, message) }

// Conflict нарушение ограничения целостности.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Infrastructure недоступность внешней зависимости.
func Infrastructure(message string, err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: message, Err: err}
}

// From извлекает доменную ошибку из цепочки. Неизвестные ошибки
// превращаются во внутреннюю ошибку без раскрытия деталей.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: "Внутренняя ошибка сервера", Err: err}
}

// KindOf возвращает вид ошибки или KindInternal.
func KindOf(err error) Kind {
	return From(err).Kind
}
