// Package service implements PII detection over nested records.
//
// Two mechanisms run independently on every leaf: the local field name is
// compared against per-category indicator lists, and string values are run
// through compiled structural patterns. Both can fire on the same leaf, so a
// single field may produce more than one detection; callers decide how to
// collapse duplicates.
package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/allisson/pseudonymizer/internal/detection/domain"
	"github.com/allisson/pseudonymizer/internal/record"
)

// fieldIndicators maps PII categories to lowercase field-name fragments.
// Order matters: earlier entries win when the pseudonymizer applies the
// first detection per path.
var fieldIndicators = []struct {
	piiType    domain.PIIType
	indicators []string
}{
	{domain.PIITypeCustomerID, []string{"customer_id", "cust_id", "client_id", "user_id"}},
	{domain.PIITypeEmail, []string{"email", "e_mail", "mail_address"}},
	{domain.PIITypePhone, []string{"phone", "mobile", "telephone", "cell_number"}},
	{domain.PIITypeSSN, []string{"ssn", "social_security"}},
	{domain.PIITypeBankAccount, []string{"bank_account", "account_number", "iban", "routing_number"}},
	{domain.PIITypeDateOfBirth, []string{"dob", "date_of_birth", "birth_date", "birthday"}},
	{domain.PIITypeAddress, []string{"address", "street", "postcode", "zip_code"}},
	{domain.PIITypeName, []string{"name", "first_name", "last_name", "full_name", "surname"}},
}

// valuePattern pairs a compiled regex with the PII type it recognizes.
// The optional validate hook can adjust confidence or reject a match.
type valuePattern struct {
	piiType    domain.PIIType
	re         *regexp.Regexp
	confidence float64
	validate   func(match string) (bool, float64)
}

var valuePatterns = []valuePattern{
	{
		piiType:    domain.PIITypeEmail,
		re:         regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
		confidence: 0.95,
	},
	{
		piiType:    domain.PIITypeSSN,
		re:         regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`),
		confidence: 0.9,
	},
	{
		piiType:    domain.PIITypeCreditCard,
		re:         regexp.MustCompile(`^(?:\d[ \-]?){12,18}\d$`),
		confidence: 0.6,
		validate:   validateCreditCard,
	},
	{
		piiType:    domain.PIITypePhone,
		re:         regexp.MustCompile(`^\+?[\d\s().\-]{7,20}$`),
		confidence: 0.7,
		validate:   validatePhone,
	},
	{
		piiType:    domain.PIITypeIPAddress,
		re:         regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`),
		confidence: 0.8,
		validate:   validateIPv4,
	},
	{
		piiType:    domain.PIITypePostalCode,
		re:         regexp.MustCompile(`^\d{5}(-\d{4})?$`),
		confidence: 0.6,
	},
	{
		piiType:    domain.PIITypeGeoCoordinates,
		re:         regexp.MustCompile(`^-?\d{1,3}\.\d+,\s*-?\d{1,3}\.\d+$`),
		confidence: 0.6,
	},
}

// Detector scans nested records for likely PII. It is stateless and safe for
// concurrent use; Detect has no side effects on the input record.
type Detector struct{}

// NewDetector creates a new PII detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect walks the record recursively and returns every detection found.
// Map keys are visited in sorted order so the output is deterministic.
func (d *Detector) Detect(rec record.Record) []domain.Detection {
	var detections []domain.Detection
	d.walkMap(rec, record.Path{}, &detections)
	return detections
}

func (d *Detector) walkMap(m map[string]any, path record.Path, out *[]domain.Detection) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		childPath := path.Child(key)
		switch value := m[key].(type) {
		case map[string]any:
			d.walkMap(value, childPath, out)
		case []any:
			d.walkSlice(value, childPath, out)
		default:
			d.inspectLeaf(key, value, childPath, out)
		}
	}
}

func (d *Detector) walkSlice(s []any, path record.Path, out *[]domain.Detection) {
	for i, item := range s {
		itemPath := path.Elem(i)
		switch value := item.(type) {
		case map[string]any:
			d.walkMap(value, itemPath, out)
		case []any:
			d.walkSlice(value, itemPath, out)
		default:
			// Slice leaves have no local field name; only patterns apply.
			if str, ok := value.(string); ok {
				d.matchPatterns(str, itemPath, out)
			}
		}
	}
}

// inspectLeaf runs both detection mechanisms on a single leaf value.
func (d *Detector) inspectLeaf(fieldName string, value any, path record.Path, out *[]domain.Detection) {
	preview := leafPreview(value)
	if preview != "" {
		d.matchFieldName(fieldName, preview, path, out)
	}

	if str, ok := value.(string); ok {
		d.matchPatterns(str, path, out)
	}
}

func (d *Detector) matchFieldName(fieldName, preview string, path record.Path, out *[]domain.Detection) {
	lower := strings.ToLower(fieldName)
	for _, category := range fieldIndicators {
		for _, indicator := range category.indicators {
			if lower != indicator && !strings.Contains(lower, indicator) {
				continue
			}
			confidence := 0.7
			if lower == indicator {
				confidence = 0.9
			}
			*out = append(*out, domain.Detection{
				Path:         path,
				FieldPath:    path.String(),
				Type:         category.piiType,
				Confidence:   confidence,
				ValuePreview: preview,
				Method:       domain.MethodFieldName,
			})
			// One detection per category; keep scanning other categories.
			break
		}
	}
}

func (d *Detector) matchPatterns(value string, path record.Path, out *[]domain.Detection) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}

	for _, pattern := range valuePatterns {
		if !pattern.re.MatchString(trimmed) {
			continue
		}
		confidence := pattern.confidence
		if pattern.validate != nil {
			ok, adjusted := pattern.validate(trimmed)
			if !ok {
				continue
			}
			confidence = adjusted
		}
		*out = append(*out, domain.Detection{
			Path:         path,
			FieldPath:    path.String(),
			Type:         pattern.piiType,
			Confidence:   confidence,
			ValuePreview: domain.Preview(trimmed),
			Method:       domain.MethodPattern,
		})
	}
}

// leafPreview renders a masked preview for string and numeric leaves.
// Other leaf kinds (bool, nil) are not treated as identifying values.
func leafPreview(value any) string {
	switch tv := value.(type) {
	case string:
		return domain.Preview(tv)
	case float64:
		return domain.Preview(strconv.FormatFloat(tv, 'f', -1, 64))
	case int:
		return domain.Preview(strconv.Itoa(tv))
	default:
		return ""
	}
}

// validateCreditCard strips separators and applies the Luhn check.
// Luhn-valid numbers are high confidence; the rest are rejected to avoid
// flagging arbitrary long digit runs.
func validateCreditCard(match string) (bool, float64) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match)
	if len(digits) < 13 || len(digits) > 19 {
		return false, 0
	}
	if !luhnValid(digits) {
		return false, 0
	}
	return true, 0.95
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// dateLike matches common date renderings so they are not mistaken for
// phone numbers.
var dateLike = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}([ T].*)?$|^\d{1,2}[-/]\d{1,2}[-/]\d{4}$`)

// validatePhone requires at least seven digits so short numeric strings
// (amounts, counters) don't match, and rejects date-shaped values.
func validatePhone(match string) (bool, float64) {
	if dateLike.MatchString(match) {
		return false, 0
	}
	digits := 0
	for _, r := range match {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 7 || digits > 15 {
		return false, 0
	}
	return true, 0.7
}

func validateIPv4(match string) (bool, float64) {
	for _, part := range strings.Split(match, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return false, 0
		}
	}
	return true, 0.8
}
