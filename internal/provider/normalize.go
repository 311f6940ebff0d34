package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ignite/citation-engine/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError carries the field-level failures from ValidateLocation.
// It is returned before any network call and is never retried.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// ValidateLocation checks the required listing fields (name, street, city,
// state, zip, country). This is the single validation point for all
// adapters; individual adapters assume an already-validated location.
func ValidateLocation(loc *domain.NormalizedLocation) error {
	err := validate.Struct(loc)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// Normalize maps a raw brand record onto the provider-agnostic listing
// shape. Pure mapping, no I/O; malformed hours/social JSON is dropped
// rather than failing the whole record.
func Normalize(rec *domain.BrandRecord) *domain.NormalizedLocation {
	loc := &domain.NormalizedLocation{
		BusinessName: strings.TrimSpace(rec.BusinessName),
		Street:       strings.TrimSpace(rec.Street),
		City:         strings.TrimSpace(rec.City),
		State:        strings.TrimSpace(rec.State),
		Zip:          strings.TrimSpace(rec.Zip),
		Country:      strings.TrimSpace(rec.Country),
		Phone:        FormatPhone(rec.Phone),
		Email:        strings.TrimSpace(rec.Email),
		Website:      strings.TrimSpace(rec.Website),
		Description:  strings.TrimSpace(rec.Description),
		LogoURL:      strings.TrimSpace(rec.LogoURL),
	}

	loc.Categories = splitCSV(rec.CategoriesCSV)
	loc.ImageURLs = splitCSV(rec.ImagesCSV)

	if rec.HoursJSON != "" {
		var hours map[string]domain.DayHours
		if err := json.Unmarshal([]byte(rec.HoursJSON), &hours); err == nil && len(hours) > 0 {
			loc.Hours = hours
		}
	}
	if rec.SocialJSON != "" {
		var social map[string]string
		if err := json.Unmarshal([]byte(rec.SocialJSON), &social); err == nil && len(social) > 0 {
			loc.SocialLinks = social
		}
	}

	return loc
}

// FormatPhone canonicalizes a phone number to E.164-like form when exactly
// 10 digits (or 11 with a leading 1) are present. Anything else passes
// through unchanged; this is best-effort canonicalization, not validation.
func FormatPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	switch d := digits.String(); {
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && d[0] == '1':
		return "+" + d
	default:
		return phone
	}
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
