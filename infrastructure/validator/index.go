package validator

func init() {
	validate.RegisterValidation("image_ref", validateImageRef)
	validate.RegisterValidation("stream_transport", validateStreamTransport)
	validate.RegisterValidation("simulation_batch", validateSimulationBatchSize)
}

type Validator struct{}

func (v *Validator) ValidateStruct(payload interface{}) *[]error {
	return validateStruct(payload)
}

func (v *Validator) ValidateValue(value any, rules string) error {
	return validateField(value, rules)
}

var ValidatorInstance = Validator{}
