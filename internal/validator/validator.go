package validator

// Validator bundles struct validation and business rule validation behind a
// single dependency that services and handlers share.
type Validator struct {
	business *BusinessValidator
}

// New creates a validator with all business rules registered.
func New() *Validator {
	return &Validator{
		business: NewBusinessValidator(),
	}
}

// Validate validates a struct and returns field-level errors, or nil.
func (v *Validator) Validate(s interface{}) error {
	if errors := v.business.Validate(s); len(errors) > 0 {
		return errors
	}
	return nil
}

// GetBusinessValidator returns the underlying business validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
