package api

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/daivaya/internal/horoscope"
	"github.com/starford/daivaya/internal/identity"
)

var clockRe = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// BirthRequest is a birth as entered in the form.
type BirthRequest struct {
	Date  string `json:"date" example:"1990-06-15" validate:"required"`
	Time  string `json:"time" example:"08:30" validate:"required"`
	Place string `json:"place" example:"Colombo" validate:"required"`
}

// Validate checks the shape of the fields; calendar and clock ranges are
// checked again when the moment is normalized.
func (b BirthRequest) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&b.Time, validation.Required, validation.Match(clockRe)),
		validation.Field(&b.Place, validation.Required, validation.Length(1, 200)),
	)
}

func (b BirthRequest) input() horoscope.BirthInput {
	return horoscope.BirthInput{Date: b.Date, Time: b.Time, Place: b.Place}
}

// PairRequest holds the births of both partners. Person1 is the bride.
type PairRequest struct {
	Person1 BirthRequest `json:"person1" validate:"required"`
	Person2 BirthRequest `json:"person2" validate:"required"`
}

// Validate validates both births.
func (p PairRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Person1),
		validation.Field(&p.Person2),
	)
}

func (p PairRequest) pair() horoscope.Pair {
	return horoscope.Pair{Person1: p.Person1.input(), Person2: p.Person2.input()}
}

// CredentialsRequest is the body of /register and /login.
type CredentialsRequest struct {
	Email    string `json:"email" example:"user@example.com" validate:"required"`
	Password string `json:"password" example:"secret123" validate:"required"`
}

// Validate requires an email address and a password of six or more characters.
func (c CredentialsRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.RuneLength(6, 0)),
	)
}

// ResetPasswordRequest is the body of /reset_password.
type ResetPasswordRequest struct {
	Email      string `json:"email" example:"user@example.com" validate:"required"`
	RedirectTo string `json:"redirect_to,omitempty" example:"https://daivaya.lk/reset"`
}

// Validate validates the reset request.
func (c ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.RedirectTo, is.URL),
	)
}

// ChartResponse is the response of /calculate_charts.
type ChartResponse = horoscope.ChartView

// ReadingRequest is the body of /generate_reading: the charts returned by
// /calculate_charts.
type ReadingRequest = horoscope.ChartData

// ReadingResponse is the response of the paid reading endpoints.
type ReadingResponse = horoscope.Outcome

// RegisterResponse is returned after sign-up.
type RegisterResponse struct {
	Message string        `json:"message" example:"User registered successfully."`
	User    identity.User `json:"user"`
}

// LoginResponse is returned after sign-in.
type LoginResponse struct {
	Message string           `json:"message" example:"Login successful."`
	Session identity.Session `json:"session"`
}

// ChargeResponse is returned by /deduct_pdf_credit.
type ChargeResponse struct {
	Charged int `json:"charged" example:"1"`
	Balance int `json:"balance" example:"4"`
}
