package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateBody runs struct validation and reports failures per JSON field.
func validateBody(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ecode.NewValidation("invalid request body", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		fields[field] = fieldMessage(fe)
	}
	return ecode.NewValidation("invalid request body", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return ecode.FieldIsRequired(fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min", "max", "len", "gt", "gte", "lte":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	}
	return ecode.FieldIsInvalid(fe.Field())
}

// validateCoordinates checks a [lon, lat] pair.
func validateCoordinates(loc *structs.LocationBody) error {
	if loc == nil || len(loc.Coordinates) != 2 {
		return nil
	}
	fields := map[string]string{}
	if lon := loc.Coordinates[0]; lon < -180 || lon > 180 {
		fields["location.coordinates"] = "longitude must be within [-180, 180]"
	}
	if lat := loc.Coordinates[1]; lat < -90 || lat > 90 {
		fields["location.coordinates"] = "latitude must be within [-90, 90]"
	}
	if len(fields) > 0 {
		return ecode.NewValidation("invalid location", fields)
	}
	return nil
}
