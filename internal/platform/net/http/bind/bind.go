// Package bind decodes request bodies and query strings into structs and
// validates them with english messages
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	perr "narrativeradar/internal/platform/errors"
	"narrativeradar/internal/platform/logger"
)

// ValidatorSvc holds the shared validator and its translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// snapshot ids are run uuids or snapshot file stems
var snapshotIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,80}$`)

// Get returns the validator singleton
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(tagName)
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("snapshot_id", func(fl validator.FieldLevel) bool {
			return snapshotIDRe.MatchString(fl.Field().String())
		})

		short(v, trans, "min", "{0} must be at least {1}")
		short(v, trans, "max", "{0} must be at most {1}")
		short(v, trans, "snapshot_id", "{0} must be a snapshot id")

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// tagName prefers query then json tag names in messages
func tagName(f reflect.StructField) string {
	for _, key := range []string{"query", "json"} {
		tag := f.Tag.Get(key)
		if i := strings.IndexByte(tag, ','); i >= 0 {
			tag = tag[:i]
		}
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return f.Name
}

func short(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Validate runs struct validation and maps failures to a validation error
// carrying the first failing field
func Validate(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Internalf("validation misconfigured")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

// FieldAndMessage returns the first failing field and its translated message
func FieldAndMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(Get().Translator)
	}
	if err == nil {
		return "", ""
	}
	return "", err.Error()
}

// JSONOptions controls body decoding
type JSONOptions struct {
	MaxBytes        int64
	DisallowUnknown bool
	AllowEmptyBody  bool
}

// DefaultJSON is strict: 1MB, unknown fields rejected, body required
var DefaultJSON = JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}

// ParseJSON decodes the body into T and validates it
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := DefaultJSON
	if len(opts) > 0 {
		o = opts[0]
	}
	if r.Body == nil {
		r.Body = http.NoBody
	}
	defer func() { _ = r.Body.Close() }()

	var body io.Reader = r.Body
	if o.MaxBytes > 0 {
		body = io.LimitReader(body, o.MaxBytes)
	}

	// peek one byte to tell an empty body from a malformed one
	first := make([]byte, 1)
	n, _ := io.ReadFull(body, first)
	if n == 0 {
		if o.AllowEmptyBody {
			return zero, Validate(zero)
		}
		return zero, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(io.MultiReader(bytes.NewReader(first), body))
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}
	var dst T
	if err := dec.Decode(&dst); err != nil {
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// ParseQuery fills T from the URL query using `query` struct tags, then
// validates it. Supported field kinds are string, bool, ints and floats
func ParseQuery[T any](r *http.Request) (T, error) {
	var dst T
	rv := reflect.ValueOf(&dst).Elem()
	if rv.Kind() != reflect.Struct {
		return dst, perr.Internalf("bind: query target must be a struct")
	}
	q := r.URL.Query()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := f.Tag.Get("query")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		if err := setField(rv.Field(i), raw); err != nil {
			return dst, perr.WithField(perr.InvalidArgf("%s: %v", name, err), name)
		}
	}
	if err := Validate(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

func setField(v reflect.Value, raw string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("must be a boolean")
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return errors.New("must be an integer")
		}
		v.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, v.Type().Bits())
		if err != nil {
			return errors.New("must be a number")
		}
		v.SetFloat(f)
	default:
		return errors.New("unsupported field type " + v.Kind().String())
	}
	return nil
}

// Var validates a single value against tag, labelling errors with field
func Var(field string, value any, tag string) error {
	if err := Get().Validator.Var(value, tag); err != nil {
		_, msg := FieldAndMessage(err)
		return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s%s", field, msg), field)
	}
	return nil
}
