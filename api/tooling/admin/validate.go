package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")

	en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("flag")
		if name == "" {
			return fld.Name
		}
		return "-" + name
	})
}

// check validates the struct and reports every failing field in one error.
func check(val any) error {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, len(verrs))
	for i, verr := range verrs {
		msgs[i] = verr.Translate(translator)
	}

	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}
