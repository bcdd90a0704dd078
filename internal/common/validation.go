package common

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Validator returns the shared validator with the app's custom rules registered
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("us_phone", func(fl validator.FieldLevel) bool {
			_, ok := NormalizeUSPhone(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
			return hexColorRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("linkedin_url", func(fl validator.FieldLevel) bool {
			return IsLinkedInURL(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs validation and flattens failures to field -> message.
// A nil map means the struct is valid.
func ValidateStruct(s interface{}) (map[string]string, error) {
	err := Validator().Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return fields, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "us_phone":
		return "must have 10 digits"
	case "hexcolor6":
		return "must be a #RRGGBB color"
	case "linkedin_url":
		return "must be a linkedin.com URL"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid id"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// IsLinkedInURL accepts http(s) URLs on linkedin.com or a subdomain of it
func IsLinkedInURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com")
}
