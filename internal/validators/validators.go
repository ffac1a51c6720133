package validators

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
)

var (
	once       sync.Once
	standalone *validator.Validate
)

func hhmm(fl validator.FieldLevel) bool {
	return workinghours.ValidHM(fl.Field().String())
}

func kephone(fl validator.FieldLevel) bool {
	return payment.ValidKenyanPhone(fl.Field().String())
}

// jsonTagName makes field errors report the JSON key instead of the Go field.
func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonTagName)
	_ = v.RegisterValidation("hhmm", hhmm)
	_ = v.RegisterValidation("kephone", kephone)
}

// Register adds the custom tags to gin's binding validator.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

func get() *validator.Validate {
	once.Do(func() {
		standalone = validator.New()
		register(standalone)
	})
	return standalone
}

// IsEmail checks syntax only; it never does DNS lookups.
func IsEmail(s string) bool {
	return get().Var(strings.TrimSpace(s), "required,email") == nil
}

// Var validates one value against a tag list outside of request binding.
func Var(value any, tag string) error {
	return get().Var(value, tag)
}
