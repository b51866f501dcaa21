package jokes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/devmarvs/jokebox"
	"github.com/devmarvs/jokebox/auth"
	"github.com/devmarvs/jokebox/store"
)

func (s *Server) loginPage(ctx *jokebox.Context) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"user":       identityOf(user),
		"redirectTo": safeRedirect(ctx.Query("redirectTo")),
	})
}

// login handles both the login and the register branch of the login form.
func (s *Server) login(ctx *jokebox.Context) error {
	values, err := readForm(ctx.Request, "loginType", "username", "password")
	if errors.Is(err, errFormNotSubmitted) {
		return badRequest(ctx, actionData{FormError: msgFormNotSubmitted})
	}
	if err != nil {
		return err
	}
	redirectTo := safeRedirect(ctx.FormValue("redirectTo"))

	form := loginForm{
		LoginType: values["loginType"],
		Username:  values["username"],
		// passwords are taken as typed
		Password: ctx.FormValue("password"),
	}
	problems, err := fieldErrors(form)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return badRequest(ctx, actionData{FieldErrors: problems, Fields: form.fields()})
	}

	reqCtx := ctx.Request.Context()
	var identity auth.Identity
	switch form.LoginType {
	case loginTypeLogin:
		identity, err = s.auth.Login(reqCtx, form.Username, form.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			ctx.Logger().Warn("login failed", slog.String("username", form.Username))
			return badRequest(ctx, actionData{FormError: msgBadCredentials, Fields: form.fields()})
		}
		if err != nil {
			return err
		}
		ctx.Logger().Info("user logged in", slog.String("user_id", identity.ID))
	case loginTypeRegister:
		taken, err := s.auth.UsernameTaken(reqCtx, form.Username)
		if err != nil {
			return err
		}
		if taken {
			return badRequest(ctx, actionData{FormError: usernameTaken(form.Username), Fields: form.fields()})
		}
		identity, err = s.auth.Register(reqCtx, form.Username, form.Password)
		if errors.Is(err, store.ErrConflict) {
			return badRequest(ctx, actionData{FormError: usernameTaken(form.Username), Fields: form.fields()})
		}
		if err != nil {
			ctx.Logger().Error("registration failed", slog.String("error", err.Error()))
			return badRequest(ctx, actionData{FormError: msgRegisterFailed, Fields: form.fields()})
		}
		ctx.Logger().Info("user registered", slog.String("user_id", identity.ID))
	default:
		return badRequest(ctx, actionData{FormError: msgLoginTypeInvalid, Fields: form.fields()})
	}

	return s.accessor.CreateUserSession(ctx.ResponseWriter, ctx.Request, identity.ID, redirectTo)
}

func usernameTaken(username string) string {
	return "User with username " + username + " already exists"
}

func (s *Server) logout(ctx *jokebox.Context) error {
	if userID, ok := s.accessor.UserID(ctx.Request); ok {
		ctx.Logger().Info("user logged out", slog.String("user_id", userID))
	}
	s.accessor.Logout(ctx.ResponseWriter, ctx.Request)
	return nil
}

func (s *Server) logoutPage(ctx *jokebox.Context) error {
	return ctx.Redirect(http.StatusSeeOther, "/")
}
