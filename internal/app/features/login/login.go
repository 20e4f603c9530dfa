// internal/app/features/login/login.go
package login

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratapage/internal/app/features/errors"
	"github.com/dalemusser/stratapage/internal/app/store/ratelimit"
	userstore "github.com/dalemusser/stratapage/internal/app/store/users"
	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/app/system/authutil"
	"github.com/dalemusser/stratapage/internal/app/system/inputval"
	"github.com/dalemusser/stratapage/internal/app/system/normalize"
	"github.com/dalemusser/stratapage/internal/app/system/timeouts"
	"github.com/dalemusser/stratapage/internal/app/system/viewdata"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Sign-in and sign-up failure messages.
const (
	MsgNoAccount       = "No account found with this email."
	MsgInvalidPassword = "Invalid password."
	MsgDisabled        = "Account is disabled."
	MsgUnavailable     = "Service temporarily unavailable. Please try again."
)

const defaultReturn = "/dashboard"

// Handler provides sign-in and sign-up handlers.
type Handler struct {
	users      *userstore.Store
	rateLimits *ratelimit.Store // nil disables rate limiting
	sessionMgr *auth.SessionManager
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a login Handler. rateLimits may be nil.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, rateLimits *ratelimit.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		users:      userstore.New(db),
		rateLimits: rateLimits,
		sessionMgr: sessionMgr,
		errLog:     errLog,
		logger:     logger,
	}
}

// LoginVM is the view model for the sign-in / sign-up page.
type LoginVM struct {
	viewdata.BaseVM
	SignUp        bool
	Error         string
	Email         string
	ReturnURL     string
	PasswordRules string
}

type credentialsInput struct {
	Email    string `validate:"required,email,max=254" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.show)
	r.Post("/", h.handleSignIn)
	r.Post("/signup", h.handleSignUp)
	return r
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, signUp bool, email, returnURL, errMsg string) {
	vm := LoginVM{
		BaseVM:        viewdata.New(r),
		SignUp:        signUp,
		Error:         errMsg,
		Email:         email,
		ReturnURL:     returnURL,
		PasswordRules: authutil.PasswordRules(),
	}
	vm.Title = "Sign in"
	if signUp {
		vm.Title = "Create account"
	}
	templates.Render(w, r, "login/index", vm)
}

// show renders the form. ?mode=signup selects the sign-up variant.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	returnURL := query.Get(r, "return")
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", defaultReturn), http.StatusSeeOther)
		return
	}
	h.render(w, r, query.Get(r, "mode") == "signup", "", returnURL, "")
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := credentialsInput{Email: normalize.Email(r.FormValue("email")), Password: r.FormValue("password")}
	returnURL := r.FormValue("return")
	fail := func(msg string) { h.render(w, r, false, in.Email, returnURL, msg) }

	if res := inputval.Validate(in); res.HasErrors() {
		fail(res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "login")
	defer cancel()

	if h.rateLimits != nil {
		if d := h.rateLimits.Check(ctx, in.Email); !d.Allowed {
			h.logger.Info("sign-in refused: rate limited", zap.String("email", in.Email))
			fail(lockoutMessage(d.LockedUntil))
			return
		}
	}

	user, err := h.users.GetByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		h.recordFailure(r, in.Email)
		fail(MsgNoAccount)
		return
	case err != nil:
		h.errLog.Log(r, "user lookup failed", err)
		fail(MsgUnavailable)
		return
	}

	if user.Status != models.StatusActive {
		h.recordFailure(r, in.Email)
		fail(MsgDisabled)
		return
	}

	if !authutil.CheckPassword(in.Password, user.PasswordHash) {
		if d := h.recordFailure(r, in.Email); !d.Allowed {
			fail(lockoutMessage(d.LockedUntil))
			return
		}
		fail(MsgInvalidPassword)
		return
	}

	if h.rateLimits != nil {
		if err := h.rateLimits.Clear(ctx, in.Email); err != nil {
			h.logger.Warn("clear rate limit failed", zap.Error(err))
		}
	}
	h.startSession(w, r, user.ID, returnURL)
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := credentialsInput{Email: normalize.Email(r.FormValue("email")), Password: r.FormValue("password")}
	returnURL := r.FormValue("return")
	fail := func(msg string) { h.render(w, r, true, in.Email, returnURL, msg) }

	if res := inputval.Validate(in); res.HasErrors() {
		fail(res.First())
		return
	}
	if err := authutil.ValidatePassword(in.Password, in.Email); err != nil {
		fail(apperr.Message(err, "Invalid password."))
		return
	}
	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.errLog.Log(r, "hash password failed", err)
		fail(MsgUnavailable)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "signup")
	defer cancel()

	user, err := h.users.Create(ctx, userstore.NewUser{Email: in.Email, PasswordHash: hash})
	switch {
	case errors.Is(err, apperr.ErrAuth):
		fail(apperr.Message(err, MsgUnavailable))
		return
	case err != nil:
		h.errLog.Log(r, "create user failed", err)
		fail(MsgUnavailable)
		return
	}

	h.logger.Info("account created", zap.String("user_id", user.ID.Hex()))
	h.startSession(w, r, user.ID, returnURL)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, returnURL string) {
	if err := h.sessionMgr.CreateSession(w, r, userID); err != nil {
		h.errLog.Log(r, "create session failed", err, zap.String("user_id", userID.Hex()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", defaultReturn), http.StatusSeeOther)
}

func (h *Handler) recordFailure(r *http.Request, email string) ratelimit.Decision {
	if h.rateLimits == nil {
		return ratelimit.Decision{Allowed: true}
	}
	return h.rateLimits.RecordFailure(r.Context(), email)
}

func lockoutMessage(until *time.Time) string {
	if until == nil {
		return "Too many failed sign-in attempts. Please try again later."
	}
	remaining := time.Until(*until)
	if remaining > time.Minute {
		return fmt.Sprintf("Too many failed sign-in attempts. Please try again in %d minute(s).", int(remaining.Minutes())+1)
	}
	return fmt.Sprintf("Too many failed sign-in attempts. Please try again in %d second(s).", int(remaining.Seconds())+1)
}
