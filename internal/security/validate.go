package security

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mrlokans/weddingplanner/internal/apperr"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-() .]+$`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

const (
	MinSlugLength = 3
	MaxSlugLength = 80
)

// FieldErrors collects per-field validation messages.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// Err returns a validation error carrying the collected messages, or nil.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return apperr.Validation("invalid input", map[string]string(f))
}

// Required records an error when value is blank.
func (f FieldErrors) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.Add(field, "is required")
	}
}

// Length records an error when value is not within [min, max] runes.
func (f FieldErrors) Length(field, value string, min, max int) {
	if err := checkLength(value, min, max); err != "" {
		f.Add(field, err)
	}
}

// Email records an error for a malformed address. Blank values are accepted.
func (f FieldErrors) Email(field, value string) {
	if value != "" && ValidateEmail(value) != nil {
		f.Add(field, "must be a valid email address")
	}
}

// URL records an error for a malformed http(s) URL. Blank values are accepted.
func (f FieldErrors) URL(field, value string) {
	if value != "" && ValidateURL(value) != nil {
		f.Add(field, "must be a valid http or https URL")
	}
}

// Phone records an error for a malformed phone number. Blank values are accepted.
func (f FieldErrors) Phone(field, value string) {
	if value != "" && ValidatePhone(value) != nil {
		f.Add(field, "must be a valid phone number")
	}
}

// NonNegative records an error when v is negative.
func (f FieldErrors) NonNegative(field string, v float64) {
	if v < 0 {
		f.Add(field, "must not be negative")
	}
}

func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength || !emailPattern.MatchString(email) {
		return apperr.Validation("invalid email format", map[string]string{"email": "must be a valid email address"})
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	invalid := apperr.Validation("invalid URL", map[string]string{"url": "must be a valid http or https URL"})
	if len(raw) > MaxURLLength {
		return invalid
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return invalid
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid
	}
	return nil
}

// ValidatePhone accepts digits with common separators, 7 to 20 digits in total.
func ValidatePhone(phone string) error {
	invalid := apperr.Validation("invalid phone number", map[string]string{"phone": "must be a valid phone number"})
	if !phonePattern.MatchString(phone) {
		return invalid
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 7 || digits > 20 {
		return invalid
	}
	return nil
}

func ValidateSlug(slug string) error {
	n := len(slug)
	if n < MinSlugLength || n > MaxSlugLength || !slugPattern.MatchString(slug) {
		return apperr.Validation("invalid slug", map[string]string{
			"slug": fmt.Sprintf("must be %d-%d lowercase letters, digits or single hyphens", MinSlugLength, MaxSlugLength),
		})
	}
	return nil
}

// ValidateLength checks that value is within [min, max] runes.
func ValidateLength(field, value string, min, max int) error {
	if msg := checkLength(value, min, max); msg != "" {
		return apperr.Validation("invalid "+field, map[string]string{field: msg})
	}
	return nil
}

func checkLength(value string, min, max int) string {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min {
		if min == 1 {
			return "is required"
		}
		return fmt.Sprintf("must be at least %d characters", min)
	}
	if max > 0 && n > max {
		return fmt.Sprintf("must be at most %d characters", max)
	}
	return ""
}

// Slugify lowercases s, folds accented letters to ASCII and joins words with hyphens.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if b.Len() > 0 && !hyphen {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
		if i := strings.LastIndexByte(slug, '-'); i > MinSlugLength {
			slug = slug[:i]
		}
		slug = strings.Trim(slug, "-")
	}
	return slug
}
