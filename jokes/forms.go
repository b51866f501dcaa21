package jokes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/devmarvs/jokebox/apperr"
	"github.com/devmarvs/jokebox/middleware"
	"github.com/devmarvs/jokebox/validate"
)

const (
	msgFormNotSubmitted = "Form not submitted correctly."
	msgLoginTypeInvalid = "Login type invalid"
	msgBadCredentials   = "Username/Password combination is incorrect"
	msgRegisterFailed   = "Something went wrong trying to create a new user."
)

const (
	loginTypeLogin    = "login"
	loginTypeRegister = "register"
)

type jokeForm struct {
	Name    string `form:"name" validate:"min=3" message:"That joke's name is too short"`
	Content string `form:"content" validate:"min=10" message:"That joke is too short"`
}

func (f jokeForm) fields() map[string]string {
	return map[string]string{"name": f.Name, "content": f.Content}
}

type loginForm struct {
	LoginType string `form:"loginType"`
	Username  string `form:"username" validate:"min=3" message:"Usernames must be at least 3 characters long"`
	Password  string `form:"password" validate:"min=6" message:"Passwords must be at least 6 characters long"`
}

// fields echoes the submitted values without the password.
func (f loginForm) fields() map[string]string {
	return map[string]string{"loginType": f.LoginType, "username": f.Username}
}

// actionData is the body of a rejected form submission.
type actionData struct {
	FormError   string            `json:"formError,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

var errFormNotSubmitted = errors.New("form not submitted")

// readForm parses the urlencoded body and returns the trimmed values of
// names. Every name must be present in the body.
func readForm(r *http.Request, names ...string) (map[string]string, error) {
	if err := parseForm(r); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(names))
	for _, name := range names {
		raw, ok := r.PostForm[name]
		if !ok || len(raw) == 0 {
			return nil, errFormNotSubmitted
		}
		values[name] = strings.TrimSpace(raw[0])
	}
	return values, nil
}

// parseForm parses the request form. A body over the size limit is a 413.
func parseForm(r *http.Request) error {
	err := r.ParseForm()
	if err == nil {
		return nil
	}
	if tooLarge := middleware.BodyTooLarge(err); tooLarge != nil {
		return tooLarge
	}
	return apperr.BadRequest("invalid form body", err)
}

// fieldErrors returns the per-field messages of a validation failure, or
// nil when form is valid.
func fieldErrors(form any) (map[string]string, error) {
	err := validate.Struct(form)
	if err == nil {
		return nil, nil
	}
	if verr, ok := validate.As(err); ok {
		return verr.Map(), nil
	}
	return nil, err
}
