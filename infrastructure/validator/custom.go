package validator

import (
	"fmt"
	"net/url"
	"strings"

	"liveguard.io/application/constants"
	"liveguard.io/application/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateStruct(payload interface{}) *[]error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	errs := []error{}
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errs = append(errs, fmt.Errorf("%s failed validation on rule %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return &errs
}

func validateField(value any, rules string) error {
	return validate.Var(value, rules)
}

// a frame reference is either a base64 payload (optionally a data URL)
// or a fetchable http(s) URL
func validateImageRef(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		_, err := url.ParseRequestURI(value)
		return err == nil
	}
	_, err := utils.DecodeBase64Image(value)
	return err == nil
}

func validateStreamTransport(fl validator.FieldLevel) bool {
	return utils.HasItemString(&constants.AVAILABLE_STREAM_TRANSPORTS, fl.Field().String())
}

func validateSimulationBatchSize(fl validator.FieldLevel) bool {
	return fl.Field().Int() <= int64(constants.MAX_SIMULATION_BATCH_SIZE)
}
