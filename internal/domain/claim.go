package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNoSession        = errors.New("session cookie not found")
	ErrMalformedSession = errors.New("malformed session cookie")
	ErrInvalidClaim     = errors.New("forbidden characters in session claim")
	ErrNotAuthorized    = errors.New("participant not allowed in room")
)

var (
	participantPattern = regexp.MustCompile(`^[\w@.\-]{1,40}$`)
	roomPattern        = regexp.MustCompile(`^[\w\-]{1,50}$`)
	tokenPattern       = regexp.MustCompile(`^[a-zA-Z0-9]{50}$`)
)

var validate = newClaimValidator()

func newClaimValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("participant", matches(participantPattern))
	_ = v.RegisterValidation("roomname", matches(roomPattern))
	_ = v.RegisterValidation("roomtoken", matches(tokenPattern))
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Claim is what the front-end asserts about a browser session:
// participant joined room using token.
type Claim struct {
	Participant string `validate:"required,participant"`
	Room        string `validate:"required,roomname"`
	Token       string `validate:"required,roomtoken"`
}

func (c Claim) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	return nil
}

// ParseSession decodes base64(participant:room:token) and validates every field.
func ParseSession(raw string) (Claim, error) {
	if raw == "" {
		return Claim{}, ErrNoSession
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		// browsers and some front-ends strip the padding
		if decoded, err = base64.RawStdEncoding.DecodeString(raw); err != nil {
			return Claim{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
		}
	}
	fields := strings.Split(string(decoded), ":")
	if len(fields) != 3 {
		return Claim{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformedSession, len(fields))
	}
	claim := Claim{Participant: fields[0], Room: fields[1], Token: fields[2]}
	if err := claim.Validate(); err != nil {
		return Claim{}, err
	}
	return claim, nil
}
