// Package validate holds the binding-tag rules shared by request binding and
// the services that accept the same input from the command line.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TagName matches gin's binding tag so one set of struct tags serves both.
const TagName = "binding"

var (
	mobileRe  = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// NormalizePhone strips separators and the +91 / 0 prefixes from an Indian
// mobile number.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	switch {
	case len(d) == 12 && strings.HasPrefix(d, "91"):
		d = d[2:]
	case len(d) == 11 && strings.HasPrefix(d, "0"):
		d = d[1:]
	}
	return d
}

// IsMobile reports whether s normalizes to a 10-digit Indian mobile number.
func IsMobile(s string) bool { return mobileRe.MatchString(NormalizePhone(s)) }

// IsPincode reports whether s is a 6-digit Indian postal code.
func IsPincode(s string) bool { return pincodeRe.MatchString(strings.TrimSpace(s)) }

// Register adds the in_mobile and in_pincode tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("in_mobile", func(fl validator.FieldLevel) bool {
		return IsMobile(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("in_pincode", func(fl validator.FieldLevel) bool {
		return IsPincode(fl.Field().String())
	})
}

var (
	once sync.Once
	std  *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		std = validator.New()
		std.SetTagName(TagName)
		if err := Register(std); err != nil {
			panic(err)
		}
	})
	return std
}

// Struct checks v against its binding tags. It returns field messages keyed
// by json name, or nil when v is valid.
func Struct(v any) map[string]string {
	if err := engine().Struct(v); err != nil {
		return Fields(err, v)
	}
	return nil
}

// Var checks a single value against tag and returns the message for the
// first failed rule, or "" when it passes.
func Var(v any, tag string) string {
	err := engine().Var(v, tag)
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return Message(ve[0])
	}
	return "Invalid value."
}

// Fields maps validation failures to field -> message, keyed by the json
// (or form) tag of dst's fields. Anything that is not a validator error is
// reported under "_".
func Fields(err error, dst any) map[string]string {
	out := map[string]string{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fieldKey(dst, fe.StructNamespace())] = Message(fe)
		}
		return out
	}

	out["_"] = "Request body is invalid."
	return out
}

// Message is the user-facing text for one failed rule.
func Message(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	param := fe.Param()
	switch fe.Tag() {
	case "required", "required_if":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "in_mobile":
		return "Enter a valid 10-digit mobile number."
	case "in_pincode":
		return "Enter a valid 6-digit pincode."
	case "min":
		return "Must be at least " + param + unit + "."
	case "max":
		return "Must be at most " + param + unit + "."
	case "gte":
		return "Must be " + param + " or more."
	case "lte":
		return "Must be " + param + " or less."
	case "len":
		return "Must be exactly " + param + unit + "."
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "numeric":
		return "Must contain digits only."
	default:
		return "Invalid value."
	}
}

func fieldKey(dst any, namespace string) string {
	// namespace is "Type.Field" or "Type.Outer.Inner"
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	t := reflect.TypeOf(dst)
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		name := p
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			keys = append(keys, strings.ToLower(p))
			t = nil
			continue
		}
		f, ok := t.FieldByName(name)
		if !ok {
			keys = append(keys, strings.ToLower(p))
			t = nil
			continue
		}
		keys = append(keys, tagName(f)+p[len(name):])
		t = f.Type
	}
	return strings.Join(keys, ".")
}

func tagName(f reflect.StructField) string {
	for _, k := range []string{"json", "form"} {
		tag := f.Tag.Get(k)
		if i := strings.Index(tag, ","); i >= 0 {
			tag = tag[:i]
		}
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return strings.ToLower(f.Name)
}
