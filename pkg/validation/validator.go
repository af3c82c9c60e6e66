package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// PasswordPolicy describes which character classes a password must carry.
type PasswordPolicy struct {
	MinLength        int
	RequireNonAlnum  bool
	RequireDigit     bool
	RequireLowercase bool
	RequireUppercase bool
}

// New builds a validator that reports JSON tag names and knows the aliases
// used by identity inputs. "strongpwd" expands to policy.
func New(policy PasswordPolicy) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hasnonalnum", hasRune(func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }))
	_ = v.RegisterValidation("hasdigit", hasRune(unicode.IsDigit))
	_ = v.RegisterValidation("haslower", hasRune(unicode.IsLower))
	_ = v.RegisterValidation("hasupper", hasRune(unicode.IsUpper))

	v.RegisterAlias("strongpwd", policy.tags())
	v.RegisterAlias("phone", "e164")
	v.RegisterAlias("nonzero", "required")
	return v
}

func (p PasswordPolicy) tags() string {
	tags := []string{"required"}
	if p.MinLength > 0 {
		tags = append(tags, "min="+strconv.Itoa(p.MinLength))
	}
	if p.RequireNonAlnum {
		tags = append(tags, "hasnonalnum")
	}
	if p.RequireDigit {
		tags = append(tags, "hasdigit")
	}
	if p.RequireLowercase {
		tags = append(tags, "haslower")
	}
	if p.RequireUppercase {
		tags = append(tags, "hasupper")
	}
	return strings.Join(tags, ",")
}

func hasRune(match func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if match(r) {
				return true
			}
		}
		return false
	}
}

// ToDetails converts validation errors into a map[field]message. Errors that
// are not validation errors map to a single "payload" entry.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			if field == "" {
				field = "value"
			}
			out[field] = formatFieldError(fe)
		}
		return out
	}
	return map[string]string{"payload": "invalid payload"}
}

// FormatDetails renders details as "field: message" pairs in field order.
func FormatDetails(details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+details[k])
	}
	return strings.Join(parts, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.ActualTag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "e164", "phone":
		return "must be a valid phone number"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "hasnonalnum":
		return "must have at least one non letter or digit character"
	case "hasdigit":
		return "must have at least one digit ('0'-'9')"
	case "haslower":
		return "must have at least one lowercase ('a'-'z')"
	case "hasupper":
		return "must have at least one uppercase ('A'-'Z')"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", fe.ActualTag(), param)
		}
		return fmt.Sprintf("validation failed for '%s'", fe.ActualTag())
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
