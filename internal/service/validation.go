package service

import (
	"net"
	"regexp"
	"strings"
	"unicode/utf8"

	"contact-service/internal/model"
)

// Validation rules carried over from the legacy contact form. The name
// pattern accepts capitalized words using the Latin alphabet plus the
// Azerbaijani letters Ə/İ/Ö/Ü/Ç/Ş/Ğ and their lowercase counterparts.
var (
	nameRegex  = regexp.MustCompile(`^[A-ZƏİÖÜÇŞĞ][a-zəiöüçşğ]+ [A-ZƏİÖÜÇŞĞ][a-zəiöüçşğ]+(?: [A-ZƏİÖÜÇŞĞ][a-zəiöüçşğ]+)*$`)
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const (
	minMessageLength = 10
	maxMessageLength = 2000
)

// User-facing error messages, kept verbatim from the legacy service.
const (
	msgInvalidName   = "Ad və soyad yalnız hərflərdən ibarət olmalı və düzgün formatda olmalıdır (məs: Aysun Rəsulova)."
	msgInvalidEmail  = "Email düzgün formatda deyil."
	msgMessageLength = "Mesaj 10–2000 simvol aralığında olmalıdır."
	msgHoneypot      = "Honeypot dolu gəlib (bot şübhəsi)."
	msgThrottled     = "Çox tez-tez göndərirsiniz. 15 saniyə sonra yenidən cəhd edin."
)

// FieldError is a single per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failing field of one payload. The
// order follows the payload's field declaration order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// ValidatePayload trims every field and checks all of them, collecting
// the full error set instead of stopping at the first failure. A nil
// return means the payload is acceptable.
func ValidatePayload(p *model.SubmissionPayload) ValidationErrors {
	name := strings.TrimSpace(p.Name)
	email := strings.TrimSpace(p.Email)
	message := strings.TrimSpace(p.Message)
	hp := strings.TrimSpace(p.Hp)

	var errs ValidationErrors
	if !nameRegex.MatchString(name) {
		errs = append(errs, FieldError{Field: "name", Message: msgInvalidName})
	}
	if !emailRegex.MatchString(email) {
		errs = append(errs, FieldError{Field: "email", Message: msgInvalidEmail})
	}
	if n := utf8.RuneCountInString(message); n < minMessageLength || n > maxMessageLength {
		errs = append(errs, FieldError{Field: "message", Message: msgMessageLength})
	}
	if hp != "" {
		errs = append(errs, FieldError{Field: "hp", Message: msgHoneypot})
	}
	return errs
}

// ResolveClientAddr derives the client address used for rate limiting.
// The first comma-separated entry of X-Forwarded-For wins when present,
// otherwise the direct peer address. Anything unparseable collapses to
// the unspecified address instead of failing the request.
func ResolveClientAddr(forwardedFor, remoteAddr string) string {
	candidate := remoteAddr
	if forwardedFor != "" {
		candidate = strings.SplitN(forwardedFor, ",", 2)[0]
	} else if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		candidate = host
	}

	if ip := net.ParseIP(strings.TrimSpace(candidate)); ip != nil {
		return ip.String()
	}
	return "0.0.0.0"
}
