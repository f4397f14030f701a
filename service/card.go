package service

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	maxCardDigits = 16
	maxCVCDigits  = 4
)

// CardDetails holds the payment form as typed by the user, already
// formatted.
type CardDetails struct {
	Number string `validate:"required,min=15,cardnumber"`
	Expiry string `validate:"required,len=5,expiry"`
	CVC    string `validate:"required,numeric,min=3,max=4"`
}

// Suffix returns the last four digits of the card number.
func (d CardDetails) Suffix() string {
	digits := onlyDigits(d.Number, maxCardDigits)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// CardError lists the form fields that failed validation.
type CardError struct {
	Fields map[string]string
}

func (e *CardError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid card details"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "invalid card details: " + strings.Join(parts, "; ")
}

var cardValidator = newCardValidator()

func newCardValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("expiry", validateExpiry)
	_ = v.RegisterValidation("cardnumber", validateCardNumber)
	return v
}

// ValidateCard checks the form. It returns a *CardError naming each
// invalid field.
func ValidateCard(details CardDetails) error {
	err := cardValidator.Struct(details)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	cardErr := &CardError{Fields: map[string]string{}}
	for _, fe := range validationErrs {
		cardErr.Fields[fieldLabel(fe.Field())] = cardMessage(fe)
	}
	return cardErr
}

// CardValid reports whether the form can be submitted.
func CardValid(details CardDetails) bool {
	return ValidateCard(details) == nil
}

func fieldLabel(field string) string {
	switch field {
	case "Number":
		return "card number"
	case "Expiry":
		return "expiry"
	case "CVC":
		return "cvc"
	default:
		return strings.ToLower(field)
	}
}

func cardMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "len":
		return "must be MM/YY"
	case "numeric":
		return "must contain only digits"
	case "expiry":
		return "must be a valid MM/YY date"
	case "cardnumber":
		return "must contain only digits"
	default:
		return "is invalid"
	}
}

func validateExpiry(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != 5 || value[2] != '/' {
		return false
	}
	month, err := strconv.Atoi(value[:2])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	_, err = strconv.Atoi(value[3:])
	return err == nil
}

func validateCardNumber(fl validator.FieldLevel) bool {
	digits := 0
	for _, r := range fl.Field().String() {
		switch {
		case r == ' ':
		case unicode.IsDigit(r):
			digits++
		default:
			return false
		}
	}
	return digits > 0 && digits <= maxCardDigits
}

// FormatCardNumber keeps up to sixteen digits and groups them by four.
func FormatCardNumber(raw string) string {
	digits := onlyDigits(raw, maxCardDigits)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry keeps up to four digits and inserts the slash after the
// month.
func FormatExpiry(raw string) string {
	digits := onlyDigits(raw, 4)
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// SanitizeCVC keeps up to four digits.
func SanitizeCVC(raw string) string {
	return onlyDigits(raw, maxCVCDigits)
}

func onlyDigits(raw string, limit int) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			if b.Len() == limit {
				break
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
