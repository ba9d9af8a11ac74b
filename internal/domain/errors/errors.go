package errors

import (
	"fmt"
)

type ErrChatNotFound struct {
	ChatID int64
}

func (e *ErrChatNotFound) Error() string {
	return fmt.Sprintf("чат не найден: %d", e.ChatID)
}

func (e *ErrChatNotFound) Is(target error) bool {
	_, ok := target.(*ErrChatNotFound)
	return ok
}

type ErrUserNotFound struct {
	Name string
}

func (e *ErrUserNotFound) Error() string {
	return "пользователь не найден: " + e.Name
}

func (e *ErrUserNotFound) Is(target error) bool {
	_, ok := target.(*ErrUserNotFound)
	return ok
}

// ErrPermissionDenied возвращается конвейером команд, когда у отправителя нет нужных прав.
type ErrPermissionDenied struct {
	Command string
	Reason  string
}

func (e *ErrPermissionDenied) Error() string {
	return fmt.Sprintf("недостаточно прав для команды %s: %s", e.Command, e.Reason)
}

func (e *ErrPermissionDenied) Is(target error) bool {
	_, ok := target.(*ErrPermissionDenied)
	return ok
}

// ErrStateConflict означает, что токен версии документа состояния устарел.
type ErrStateConflict struct {
	Backend string
	Version int64
}

func (e *ErrStateConflict) Error() string {
	return fmt.Sprintf("конфликт версий состояния (%s, версия %d)", e.Backend, e.Version)
}

func (e *ErrStateConflict) Is(target error) bool {
	_, ok := target.(*ErrStateConflict)
	return ok
}

// ErrMessageGone означает, что сообщение удалено или больше не может быть изменено.
type ErrMessageGone struct {
	ChatID    int64
	MessageID int
	Cause     error
}

func (e *ErrMessageGone) Error() string {
	return fmt.Sprintf("сообщение %d в чате %d недоступно: %v", e.MessageID, e.ChatID, e.Cause)
}

func (e *ErrMessageGone) Unwrap() error {
	return e.Cause
}

func (e *ErrMessageGone) Is(target error) bool {
	_, ok := target.(*ErrMessageGone)
	return ok
}

type ErrMessageNotModified struct {
	ChatID    int64
	MessageID int
}

func (e *ErrMessageNotModified) Error() string {
	return fmt.Sprintf("сообщение %d в чате %d не изменилось", e.MessageID, e.ChatID)
}

func (e *ErrMessageNotModified) Is(target error) bool {
	_, ok := target.(*ErrMessageNotModified)
	return ok
}

type ErrTelegramAPI struct {
	Operation string
	Cause     error
}

func (e *ErrTelegramAPI) Error() string {
	return fmt.Sprintf("ошибка Telegram API при %s: %v", e.Operation, e.Cause)
}

func (e *ErrTelegramAPI) Unwrap() error {
	return e.Cause
}

type ErrInvalidArgument struct {
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("некорректный аргумент: %s", e.Message)
}

type ErrInvalidChatID struct {
	Value string
}

func (e *ErrInvalidChatID) Error() string {
	return fmt.Sprintf("некорректный идентификатор чата: %q", e.Value)
}

func (e *ErrInvalidChatID) Is(target error) bool {
	_, ok := target.(*ErrInvalidChatID)
	return ok
}

type ErrMissingConfig struct {
	Name string
}

func (e *ErrMissingConfig) Error() string {
	return fmt.Sprintf("отсутствует обязательный параметр конфигурации: %s", e.Name)
}

type ErrUnknownStateBackend struct {
	Backend string
}

func (e *ErrUnknownStateBackend) Error() string {
	return fmt.Sprintf("неизвестное хранилище состояния: %s", e.Backend)
}

type ErrUnknownTransport struct {
	Transport string
}

func (e *ErrUnknownTransport) Error() string {
	return fmt.Sprintf("неизвестный транспорт сообщений: %s", e.Transport)
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
