// Package validator provides custom validation functions and utilities.
// Пакет validator предоставляет кастомные функции валидации и утилиты.
package validator

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// emailFormatRegex validates the overall email shape including the domain part.
// emailFormatRegex проверяет общую форму email, включая доменную часть.
var emailFormatRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CustomValidator wraps the standard validator with custom validations.
// CustomValidator оборачивает стандартный валидатор с кастомными проверками.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates a new CustomValidator with all custom validations registered.
// New создаёт новый CustomValidator со всеми зарегистрированными кастомными проверками.
func New() (*CustomValidator, error) {
	v := validator.New()

	if err := v.RegisterValidation("safeemail", validateSafeEmail); err != nil {
		return nil, err
	}

	if err := v.RegisterValidation("nohtml", validateNoHTML); err != nil {
		return nil, err
	}

	return &CustomValidator{validate: v}, nil
}

// Validate validates a struct using the registered validations.
// Validate проверяет структуру с помощью зарегистрированных валидаций.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// validateSafeEmail validates email format and checks for common injection patterns.
// validateSafeEmail проверяет формат email и известные инъекционные паттерны.
func validateSafeEmail(fl validator.FieldLevel) bool {
	email := fl.Field().String()

	if !emailFormatRegex.MatchString(email) {
		return false
	}

	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"data:",
		"\n",
		"\r",
		"%0a",
		"%0d",
	}

	emailLower := strings.ToLower(email)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(emailLower, pattern) {
			return false
		}
	}

	return true
}

// validateNoHTML ensures the field contains no HTML tags.
// validateNoHTML гарантирует отсутствие HTML тегов в поле.
func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	htmlTagPattern := regexp.MustCompile(`<[^>]*>`)
	return !htmlTagPattern.MatchString(value)
}

// ValidationErrors represents a map of field names to error messages.
// ValidationErrors представляет отображение имён полей в сообщения об ошибках.
type ValidationErrors map[string]string

// FormatValidationErrors converts validator.ValidationErrors to a user-friendly format.
// FormatValidationErrors преобразует validator.ValidationErrors в удобный для пользователя формат.
func FormatValidationErrors(err error) ValidationErrors {
	result := make(ValidationErrors)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := strings.ToLower(e.Field())
			result[field] = formatErrorMessage(e)
		}
	}

	return result
}

// formatErrorMessage returns a user-friendly error message for a validation error.
// formatErrorMessage возвращает понятное пользователю сообщение об ошибке валидации.
func formatErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email", "safeemail":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + e.Param() + " characters"
	case "max":
		return "Must be at most " + e.Param() + " characters"
	case "nohtml":
		return "HTML tags are not allowed"
	case "oneof":
		return "Must be one of: " + e.Param()
	default:
		return "Invalid value"
	}
}

// PasswordRequirements defines configurable password complexity requirements.
// PasswordRequirements определяет конфигурируемые требования к сложности пароля.
type PasswordRequirements struct {
	MinLength      int  // Minimum password length / Минимальная длина пароля
	MaxLength      int  // Maximum password length / Максимальная длина пароля
	DisallowCommon bool // Disallow well-known passwords / Запретить известные пароли
}

// DefaultPasswordRequirements returns the default password requirements.
// DefaultPasswordRequirements возвращает требования к паролю по умолчанию.
//
// The baseline is an 8-character minimum; character-class rules are
// deliberately not imposed on sign-up.
// Базовый минимум — 8 символов; правила по классам символов намеренно
// не применяются при регистрации.
func DefaultPasswordRequirements() PasswordRequirements {
	return PasswordRequirements{
		MinLength:      8,
		MaxLength:      128,
		DisallowCommon: true,
	}
}

// PasswordValidationResult contains the result of password validation.
// PasswordValidationResult содержит результат валидации пароля.
type PasswordValidationResult struct {
	Valid    bool             // Whether the password is valid / Валиден ли пароль
	Errors   []string         // List of validation errors / Список ошибок валидации
	Strength PasswordStrength // Estimated strength / Оценка силы
}

// ValidatePassword validates a password against the given requirements.
// ValidatePassword проверяет пароль на соответствие заданным требованиям.
func ValidatePassword(password string, req PasswordRequirements) PasswordValidationResult {
	result := PasswordValidationResult{
		Errors:   []string{},
		Strength: CheckPasswordStrength(password),
	}

	if len(password) < req.MinLength {
		result.Errors = append(result.Errors, "Password must be at least "+strconv.Itoa(req.MinLength)+" characters long")
	}
	if req.MaxLength > 0 && len(password) > req.MaxLength {
		result.Errors = append(result.Errors, "Password must be at most "+strconv.Itoa(req.MaxLength)+" characters long")
	}
	if req.DisallowCommon && isCommonPassword(password) {
		result.Errors = append(result.Errors, "Password is too common, please choose a more unique password")
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidatePasswordDefault validates password with default requirements.
// ValidatePasswordDefault проверяет пароль с требованиями по умолчанию.
func ValidatePasswordDefault(password string) PasswordValidationResult {
	return ValidatePassword(password, DefaultPasswordRequirements())
}

// PasswordStrength represents the strength of a password.
// PasswordStrength представляет силу пароля.
type PasswordStrength int

// Password strength levels.
// Уровни силы пароля.
const (
	PasswordWeak   PasswordStrength = iota // Weak password / Слабый пароль
	PasswordFair                           // Fair password / Средний пароль
	PasswordGood                           // Good password / Хороший пароль
	PasswordStrong                         // Strong password / Сильный пароль
)

// String returns a string representation of password strength.
// String возвращает строковое представление силы пароля.
func (ps PasswordStrength) String() string {
	switch ps {
	case PasswordStrong:
		return "strong"
	case PasswordGood:
		return "good"
	case PasswordFair:
		return "fair"
	default:
		return "weak"
	}
}

// CheckPasswordStrength evaluates the strength of a password.
// CheckPasswordStrength оценивает силу пароля.
func CheckPasswordStrength(password string) PasswordStrength {
	score := lengthScore(len(password)) + varietyScore(password)
	switch {
	case score >= 6:
		return PasswordStrong
	case score >= 4:
		return PasswordGood
	case score >= 2:
		return PasswordFair
	default:
		return PasswordWeak
	}
}

// lengthScore awards one point per length threshold reached.
// lengthScore начисляет по одному баллу за каждый достигнутый порог длины.
func lengthScore(length int) int {
	score := 0
	for _, threshold := range []int{8, 12, 16} {
		if length >= threshold {
			score++
		}
	}
	return score
}

// varietyScore awards one point per character class present.
// varietyScore начисляет по одному баллу за каждый присутствующий класс символов.
func varietyScore(password string) int {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	score := 0
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if present {
			score++
		}
	}
	return score
}

// isCommonPassword checks if password is in the list of well-known passwords.
// isCommonPassword проверяет, входит ли пароль в список известных паролей.
func isCommonPassword(password string) bool {
	commonPasswords := map[string]bool{
		"password":    true,
		"password1":   true,
		"password123": true,
		"12345678":    true,
		"123456789":   true,
		"1234567890":  true,
		"qwerty123":   true,
		"qwertyuiop":  true,
		"letmein1":    true,
		"welcome1":    true,
		"admin123":    true,
		"changeme":    true,
		"iloveyou":    true,
		"trustno1":    true,
		"sunshine":    true,
		"princess":    true,
		"football":    true,
		"superman":    true,
		"passw0rd":    true,
		"p@ssw0rd":    true,
	}

	return commonPasswords[strings.ToLower(password)]
}
