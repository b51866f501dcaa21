package jokes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/devmarvs/jokebox"
	"github.com/devmarvs/jokebox/apperr"
	"github.com/devmarvs/jokebox/auth"
	"github.com/devmarvs/jokebox/store"
)

const (
	msgJokeNotFound = "What a joke! Not found."
	msgNotOwner     = "That joke does not belong to you"
	msgNoRandomJoke = "No random joke found"
	msgNewJokeAnon  = "Unauthorized"
)

const (
	intentDelete    = "delete"
	denialNotFound  = "not_found"
	denialForbidden = "forbidden"
)

type jokeListItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) jokesIndex(ctx *jokebox.Context) error {
	reqCtx := ctx.Request.Context()
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	latest, err := s.store.LatestJokes(reqCtx, latestLimit)
	if err != nil {
		return err
	}
	items := make([]jokeListItem, 0, len(latest))
	for _, joke := range latest {
		items = append(items, jokeListItem{ID: joke.ID, Name: joke.Name})
	}

	count, err := s.store.CountJokes(reqCtx)
	if err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound(msgNoRandomJoke, nil)
	}
	random, err := s.store.JokeAt(reqCtx, s.random(count))
	if errors.Is(err, store.ErrNotFound) {
		// deleted between count and fetch
		return apperr.NotFound(msgNoRandomJoke, err)
	}
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"user":          identityOf(user),
		"jokeListItems": items,
		"randomJoke":    random,
	})
}

func (s *Server) newJokePage(ctx *jokebox.Context) error {
	userID, ok := s.accessor.UserID(ctx.Request)
	if !ok {
		return apperr.Unauthorized(msgNewJokeAnon, nil)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"userId": userID})
}

func (s *Server) createJoke(ctx *jokebox.Context) error {
	userID, err := s.accessor.RequireUserID(ctx.Request, "")
	if err != nil {
		return err
	}

	values, err := readForm(ctx.Request, "name", "content")
	if errors.Is(err, errFormNotSubmitted) {
		return badRequest(ctx, actionData{FormError: msgFormNotSubmitted})
	}
	if err != nil {
		return err
	}

	form := jokeForm{Name: values["name"], Content: values["content"]}
	problems, err := fieldErrors(form)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return badRequest(ctx, actionData{FieldErrors: problems, Fields: form.fields()})
	}

	joke, err := s.store.CreateJoke(ctx.Request.Context(), store.NewJoke{
		JokesterID: userID,
		Name:       form.Name,
		Content:    form.Content,
	})
	if errors.Is(err, store.ErrNotFound) {
		// the session names a user that no longer exists
		ctx.SetCookie(s.accessor.Sessions().Destroy())
		return apperr.LoginRedirect(s.accessor.LoginPath(), ctx.Request.URL.Path)
	}
	if err != nil {
		return err
	}

	ctx.Logger().Info("joke created",
		slog.String("joke_id", joke.ID),
		slog.String("user_id", userID),
	)
	return ctx.Redirect(http.StatusSeeOther, "/jokes/"+joke.ID)
}

func (s *Server) showJoke(ctx *jokebox.Context) error {
	joke, err := s.store.JokeByID(ctx.Request.Context(), ctx.Param("jokeId"))
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgJokeNotFound, err)
	}
	if err != nil {
		return err
	}

	userID, _ := s.accessor.UserID(ctx.Request)
	isOwner := auth.AuthorizeOwnerMutation(joke.JokesterID, userID) == auth.Allowed
	return ctx.JSON(http.StatusOK, map[string]any{
		"joke":    joke,
		"isOwner": isOwner,
	})
}

// jokeAction handles the joke page form. Only the delete intent exists; it
// is checked before identity, and existence before ownership.
func (s *Server) jokeAction(ctx *jokebox.Context) error {
	if err := parseForm(ctx.Request); err != nil {
		return err
	}
	intent := ctx.FormValue("intent")
	if intent != intentDelete {
		return apperr.BadRequest(`The intent "`+intent+`" is not supported`, nil)
	}

	userID, err := s.accessor.RequireUserID(ctx.Request, "")
	if err != nil {
		return err
	}

	jokeID := ctx.Param("jokeId")
	joke, err := s.store.JokeByID(ctx.Request.Context(), jokeID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	found := err == nil
	ownerID := ""
	if found {
		ownerID = joke.JokesterID
	}

	if err := auth.CheckOwnerMutation(found, ownerID, userID); err != nil {
		return s.denyMutation(ctx, jokeID, userID, err)
	}

	if err := s.store.DeleteJoke(ctx.Request.Context(), jokeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(msgJokeNotFound, err)
		}
		return err
	}

	ctx.Logger().Info("joke deleted",
		slog.String("joke_id", jokeID),
		slog.String("user_id", userID),
	)
	return ctx.Redirect(http.StatusSeeOther, "/jokes")
}

func (s *Server) denyMutation(ctx *jokebox.Context, jokeID, userID string, err error) error {
	appErr := apperr.As(err)
	if appErr != nil && appErr.Code == apperr.CodeNotFound {
		s.metrics.AuthzDenied(denialNotFound)
		return apperr.NotFound(msgJokeNotFound, err)
	}

	s.metrics.AuthzDenied(denialForbidden)
	ctx.Logger().Warn("joke mutation denied",
		slog.String("joke_id", jokeID),
		slog.String("user_id", userID),
	)
	return apperr.Forbidden(msgNotOwner, err)
}
