package transport

type AddressRequest struct {
	FirstName    string `json:"first_name"    validate:"max=100"`
	LastName     string `json:"last_name"     validate:"max=100"`
	Phone        string `json:"phone"         validate:"max=30"`
	AddressLine1 string `json:"address_line1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line2" validate:"max=255"`
	City         string `json:"city"          validate:"required,max=100"`
	State        string `json:"state"         validate:"max=100"`
	PostalCode   string `json:"postal_code"   validate:"max=20"`
	Country      string `json:"country"       validate:"required,max=100"`
	IsDefault    bool   `json:"is_default"`
}
