package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"wa-gateway/errors"

	"github.com/go-playground/validator/v10"
)

// defaultFieldMessage is what a rule without its own msg tag reports.
const defaultFieldMessage = "Invalid value"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
}

type IsRegisteredRequest struct {
	Number string `json:"number" validate:"required" msg:"Number is required"`
}

type SendMessageRequest struct {
	Number  string `json:"number" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type SendMediaRequest struct {
	Number  string `json:"number" validate:"required" msg:"Number is required"`
	Caption string `json:"caption"`
}

type SendGroupMessageRequest struct {
	ID      string "json:\"id\" validate:\"required_without=Name\" msg:\"Invalid value, you can use `id` or `name`\""
	Name    string `json:"name"`
	Message string `json:"message" validate:"required"`
}

type AddToGroupRequest struct {
	Number  string `json:"number" validate:"required" msg:"Number is required"`
	GroupID string `json:"groupid" validate:"required" msg:"Group ID is required"`
}

type ClearMessageRequest struct {
	Number string `json:"number" validate:"required"`
}

type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required" msg:"API key is required"`
	Client string `json:"client"`
}

// FieldErrors maps a body field to the message of its first failed rule.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", errors.ErrValidation, strings.Join(parts, ", "))
}

func (f FieldErrors) Unwrap() error { return errors.ErrValidation }

// bind fills dst from a JSON body or from form values, then validates it.
// dst must be a pointer to a struct of string fields.
func bind(r *http.Request, dst any) error {
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return fmt.Errorf("%w: malformed json body: %v", errors.ErrValidation, err)
		}
	} else if err := bindForm(r, dst); err != nil {
		return err
	}
	return check(dst)
}

func bindForm(r *http.Request, dst any) error {
	if r.Form == nil {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: malformed form body: %v", errors.ErrValidation, err)
		}
	}
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := fieldName(t.Field(i))
		if name == "" || t.Field(i).Type.Kind() != reflect.String {
			continue
		}
		v.Field(i).SetString(r.FormValue(name))
	}
	return nil
}

func check(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if !stderrors.As(err, &invalid) {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	t := reflect.TypeOf(dst).Elem()
	fields := FieldErrors{}
	for _, fe := range invalid {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		msg := defaultFieldMessage
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if custom := sf.Tag.Get("msg"); custom != "" {
				msg = custom
			}
		}
		fields[fe.Field()] = msg
	}
	return fields
}

func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
