package httpapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sreesansree/Quill-Backend/internal/auth"
	"github.com/sreesansree/Quill-Backend/internal/config"
	"github.com/sreesansree/Quill-Backend/internal/model"
	"github.com/sreesansree/Quill-Backend/internal/rate"
	"github.com/sreesansree/Quill-Backend/internal/store"

	_ "github.com/sreesansree/Quill-Backend/docs" // swagger docs

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

const maxUploadBytes = 10 << 20

type Server struct {
	store   store.Store
	auth    *auth.Service
	limiter rate.Limiter
	cfg     config.Config
}

func NewServer(store store.Store, authSvc *auth.Service, limiter rate.Limiter, cfg config.Config) (*Server, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Server{store: store, auth: authSvc, limiter: limiter, cfg: cfg}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.handleAPI(w, r)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/swagger/") {
		httpSwagger.WrapHandler.ServeHTTP(w, r)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/uploads/") {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.serveUpload(w, r)
		return
	}
	notFound(w)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	segments := splitPath(path)

	switch {
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "register":
		if r.Method == http.MethodPost {
			s.handleRegister(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "verify-otp":
		if r.Method == http.MethodPost {
			s.handleVerifyOTP(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "resend-otp":
		if r.Method == http.MethodPost {
			s.handleResendOTP(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "login":
		if r.Method == http.MethodPost {
			s.handleLogin(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "logout":
		if r.Method == http.MethodPost {
			s.handleLogout(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "request-otp":
		if r.Method == http.MethodPost {
			s.handleRequestOTP(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "reset-password":
		if r.Method == http.MethodPost {
			s.handleResetPassword(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "users" && segments[1] == "update-profile":
		if r.Method == http.MethodPut {
			s.handleUpdateProfile(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "users" && segments[1] == "change-password":
		if r.Method == http.MethodPut {
			s.handleChangePassword(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "users" && segments[1] == "liked":
		if r.Method == http.MethodGet {
			s.handleListReacted(w, r, model.ReactionLike)
			return
		}
	case len(segments) == 2 && segments[0] == "users" && segments[1] == "disliked":
		if r.Method == http.MethodGet {
			s.handleListReacted(w, r, model.ReactionDislike)
			return
		}
	case len(segments) == 2 && segments[0] == "users" && segments[1] == "blocked":
		if r.Method == http.MethodGet {
			s.handleListReacted(w, r, model.ReactionBlock)
			return
		}
	case len(segments) == 3 && segments[0] == "users" && segments[2] == "like":
		if r.Method == http.MethodPost {
			s.handleReaction(w, r, segments[1], model.ReactionLike)
			return
		}
	case len(segments) == 3 && segments[0] == "users" && segments[2] == "dislike":
		if r.Method == http.MethodPost {
			s.handleReaction(w, r, segments[1], model.ReactionDislike)
			return
		}
	case len(segments) == 3 && segments[0] == "users" && segments[2] == "block":
		if r.Method == http.MethodPost {
			s.handleReaction(w, r, segments[1], model.ReactionBlock)
			return
		}
	case len(segments) == 1 && segments[0] == "articles":
		if r.Method == http.MethodPost {
			s.handleCreateArticle(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "articles" && segments[1] == "my-articles":
		if r.Method == http.MethodGet {
			s.handleListMyArticles(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "articles" && segments[1] == "preferences":
		if r.Method == http.MethodGet {
			s.handleListPreferenceFeed(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "articles":
		if r.Method == http.MethodGet {
			s.handleGetArticle(w, r, segments[1])
			return
		}
		if r.Method == http.MethodPut {
			s.handleUpdateArticle(w, r, segments[1])
			return
		}
		if r.Method == http.MethodDelete {
			s.handleDeleteArticle(w, r, segments[1])
			return
		}
	case len(segments) == 1 && segments[0] == "categories":
		if r.Method == http.MethodGet {
			s.handleListCategories(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "version":
		if r.Method == http.MethodGet {
			s.handleVersion(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "stats":
		if r.Method == http.MethodGet {
			s.handleGetStats(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "openapi.json":
		if r.Method == http.MethodGet {
			s.serveOpenAPIJSON(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "openapi.yaml":
		if r.Method == http.MethodGet {
			s.serveOpenAPIYAML(w, r)
			return
		}
	}

	notFound(w)
}

// handleRegister godoc
//
//	@Summary		Register a new user
//	@Description	Validate the registration form, hold it pending, and email a 6-digit OTP. No account exists until the OTP is verified.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			registration	body		auth.RegisterRequest	true	"Registration form"
//	@Success		200				{object}	map[string]string		"OTP sent"
//	@Failure		400				{object}	map[string]string	"Validation, conflict, or delivery error"
//	@Failure		429				{object}	map[string]string	"Rate limited"
//	@Router			/api/auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "register", s.cfg.RateLimits.RegisterPerMinute) {
		return
	}
	var req auth.RegisterRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.auth.Register(r.Context(), req); err != nil {
		writeError(w, authStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "OTP sent to your email. Please verify to complete registration."})
}

// handleVerifyOTP godoc
//
//	@Summary		Verify registration OTP
//	@Description	Check the emailed code against the pending registration and create the account on success.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			verification	body		object{email=string,otp=string}	true	"Email and OTP"
//	@Success		200				{object}	map[string]any		"Account created"
//	@Failure		400				{object}	map[string]string	"Unknown email, expired, or wrong code"
//	@Failure		409				{object}	map[string]string	"Email or phone claimed since registering"
//	@Router			/api/auth/verify-otp [post]
func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := s.auth.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		// The email or phone can be claimed between register and verify.
		if errors.Is(err, auth.ErrConflict) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, authStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Account created successfully",
		"user":    user,
	})
}

// handleResendOTP godoc
//
//	@Summary		Resend registration OTP
//	@Description	Issue a fresh OTP for a pending registration. The previous code stops working.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		object{email=string}	true	"Email"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	map[string]string	"No pending registration or delivery failure"
//	@Failure		429		{object}	map[string]string	"Rate limited"
//	@Router			/api/auth/resend-otp [post]
func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "otp", s.cfg.RateLimits.OTPPerMinute) {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.auth.ResendOTP(r.Context(), req.Email); err != nil {
		writeError(w, authStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "A new OTP has been sent to your email."})
}

// handleLogin godoc
//
//	@Summary		Log in
//	@Description	Authenticate with email or phone plus password and receive a bearer token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		object{email=string,password=string}	true	"Email or phone, and password"
//	@Success		200			{object}	map[string]any		"Token and profile"
//	@Failure		401			{object}	map[string]string	"Wrong password"
//	@Failure		404			{object}	map[string]string	"No such user"
//	@Failure		429			{object}	map[string]string	"Rate limited"
//	@Router			/api/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "login", s.cfg.RateLimits.LoginPerMinute) {
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	token, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err)
		case errors.Is(err, auth.ErrValidation):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// handleLogout godoc
//
//	@Summary		Log out
//	@Description	Acknowledge logout. Tokens are stateless; the client discards its copy.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	map[string]string	"No bearer token supplied"
//	@Router			/api/auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusBadRequest, errors.New("no active session"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

// handleRequestOTP godoc
//
//	@Summary		Request a password reset OTP
//	@Description	Email a reset code to a registered address.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		object{email=string}	true	"Email"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	map[string]string	"Delivery failure"
//	@Failure		404		{object}	map[string]string	"No such user"
//	@Failure		429		{object}	map[string]string	"Rate limited"
//	@Router			/api/auth/request-otp [post]
func (s *Server) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "otp", s.cfg.RateLimits.OTPPerMinute) {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, authStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "A password reset code has been sent to your email."})
}

// handleResetPassword godoc
//
//	@Summary		Reset password with OTP
//	@Description	Verify the reset code and set a new password.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			reset	body		object{email=string,otp=string,new_password=string}	true	"Email, OTP, and new password"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	map[string]string	"Unknown email, expired or wrong code, weak password"
//	@Router			/api/auth/reset-password [post]
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.auth.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(w, authStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password reset successfully"})
}

// handleUpdateProfile godoc
//
//	@Summary		Update profile
//	@Description	Edit profile fields. Accepts JSON, or multipart form data with an optional profilePicture file.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			profile	body		object{first_name=string,last_name=string,email=string,phone=string,dob=string,preferences=[]string}	false	"Fields to change"
//	@Success		200		{object}	model.User
//	@Failure		400		{object}	map[string]string	"Validation error"
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Failure		409		{object}	map[string]string	"Email or phone already taken"
//	@Router			/api/users/update-profile [put]
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		FirstName   string   `json:"first_name"`
		LastName    string   `json:"last_name"`
		Email       string   `json:"email"`
		Phone       string   `json:"phone"`
		DOB         string   `json:"dob"`
		Preferences []string `json:"preferences"`
	}
	var pictureURL string
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.FirstName = r.FormValue("first_name")
		req.LastName = r.FormValue("last_name")
		req.Email = r.FormValue("email")
		req.Phone = r.FormValue("phone")
		req.DOB = r.FormValue("dob")
		req.Preferences = splitCSV(r.FormValue("preferences"))
		url, err := s.saveUpload(r, "profilePicture")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		pictureURL = url
	} else if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), current.ID, req.FirstName, req.LastName, req.Email, req.Phone, req.DOB, req.Preferences)
	if err != nil {
		if errors.Is(err, auth.ErrConflict) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, authStatus(err, http.StatusBadRequest), err)
		return
	}
	if pictureURL != "" {
		user.ProfilePicture = pictureURL
		if err := s.store.UpdateUserProfile(r.Context(), &user); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, user)
}

// handleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Verify the current password and replace it with a new one.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			passwords	body		object{current_password=string,new_password=string}	true	"Current and new passwords"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	map[string]string	"Wrong current password or weak new password"
//	@Failure		401			{object}	map[string]string	"Authentication required"
//	@Router			/api/users/change-password [put]
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.auth.ChangePassword(r.Context(), current.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, authStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
}

// handleReaction godoc
//
//	@Summary		React to an article
//	@Description	Like, dislike, or block an article. A like removes an existing dislike and vice versa; blocking is idempotent.
//	@Tags			Reactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			articleID	path		int	true	"Article ID"
//	@Success		200			{object}	map[string]string
//	@Failure		401			{object}	map[string]string	"Authentication required"
//	@Failure		404			{object}	map[string]string	"Article not found"
//	@Failure		409			{object}	map[string]string	"Already reacted"
//	@Router			/api/users/{articleID}/like [post]
func (s *Server) handleReaction(w http.ResponseWriter, r *http.Request, idStr, kind string) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	articleID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid article id"))
		return
	}
	if _, err := s.store.GetArticle(r.Context(), articleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.SetReaction(r.Context(), articleID, current.ID, kind); err != nil {
		if errors.Is(err, store.ErrDuplicateReaction) {
			writeError(w, http.StatusConflict, fmt.Errorf("article already %sd", kind))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("Article %sd", kind)})
}

// handleListReacted godoc
//
//	@Summary		List reacted articles
//	@Description	List the articles the caller has liked, disliked, or blocked.
//	@Tags			Reactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Max results"	default(50)
//	@Success		200		{array}		model.Article
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Router			/api/users/liked [get]
func (s *Server) handleListReacted(w http.ResponseWriter, r *http.Request, kind string) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	articles, err := s.store.ListArticlesByReaction(r.Context(), current.ID, kind, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

// handleCreateArticle godoc
//
//	@Summary		Publish an article
//	@Description	Create an article. Accepts JSON, or multipart form data with an optional coverImage file.
//	@Tags			Articles
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			article	body		object{title=string,description=string,content=string,category=string,tags=[]string}	true	"Article"
//	@Success		200		{object}	model.Article
//	@Failure		400		{object}	map[string]string	"Validation error"
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Router			/api/articles [post]
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Content     string   `json:"content"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
		ImageURL    string   `json:"image_url"`
	}
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")
		req.Content = r.FormValue("content")
		req.Category = r.FormValue("category")
		req.Tags = splitCSV(r.FormValue("tags"))
		url, err := s.saveUpload(r, "coverImage")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.ImageURL = url
	} else if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, errors.New("title and content are required"))
		return
	}
	if !model.ValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown category %q", req.Category))
		return
	}

	article := model.Article{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		Category:    req.Category,
		AuthorID:    current.ID,
		CreatedAt:   time.Now(),
	}
	id, err := s.store.CreateArticle(r.Context(), &article)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	created, err := s.store.GetArticle(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// handleListMyArticles godoc
//
//	@Summary		List my articles
//	@Description	List articles authored by the caller, newest first.
//	@Tags			Articles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Max results"	default(50)
//	@Success		200		{array}		model.Article
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Router			/api/articles/my-articles [get]
func (s *Server) handleListMyArticles(w http.ResponseWriter, r *http.Request) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	articles, err := s.store.ListArticlesByAuthor(r.Context(), current.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

// handleListPreferenceFeed godoc
//
//	@Summary		Preference feed
//	@Description	List articles in the caller's preferred categories, excluding their own articles and anything they have blocked.
//	@Tags			Articles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Max results"	default(50)
//	@Success		200		{array}		model.Article
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Router			/api/articles/preferences [get]
func (s *Server) handleListPreferenceFeed(w http.ResponseWriter, r *http.Request) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	articles, err := s.store.ListArticles(r.Context(), store.ArticleListOpts{
		Limit:            limit,
		Categories:       current.Preferences,
		ExcludeAuthor:    current.ID,
		ExcludeBlockedBy: current.ID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

// handleGetArticle godoc
//
//	@Summary		Get an article
//	@Tags			Articles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Article ID"
//	@Success		200	{object}	model.Article
//	@Failure		404	{object}	map[string]string	"Not found"
//	@Router			/api/articles/{id} [get]
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request, idStr string) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	articleID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		notFound(w)
		return
	}
	article, err := s.store.GetArticle(r.Context(), articleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// handleUpdateArticle godoc
//
//	@Summary		Edit an article
//	@Description	Edit an article the caller authored. Accepts JSON, or multipart form data with an optional coverImage file.
//	@Tags			Articles
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int	true	"Article ID"
//	@Param			article	body		object{title=string,description=string,content=string,category=string,tags=[]string}	false	"Fields to change"
//	@Success		200		{object}	model.Article
//	@Failure		400		{object}	map[string]string	"Validation error"
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Failure		403		{object}	map[string]string	"Not the author"
//	@Failure		404		{object}	map[string]string	"Not found"
//	@Router			/api/articles/{id} [put]
func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request, idStr string) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	articleID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		notFound(w)
		return
	}
	article, err := s.store.GetArticle(r.Context(), articleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if article.AuthorID != current.ID {
		writeError(w, http.StatusForbidden, errors.New("only the author can edit an article"))
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Content     string   `json:"content"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
	}
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")
		req.Content = r.FormValue("content")
		req.Category = r.FormValue("category")
		req.Tags = splitCSV(r.FormValue("tags"))
		url, err := s.saveUpload(r, "coverImage")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if url != "" {
			article.ImageURL = url
		}
	} else if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		article.Title = title
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		article.Description = desc
	}
	if content := strings.TrimSpace(req.Content); content != "" {
		article.Content = content
	}
	if req.Category != "" {
		if !model.ValidCategory(req.Category) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown category %q", req.Category))
			return
		}
		article.Category = req.Category
	}
	if req.Tags != nil {
		article.Tags = req.Tags
	}

	if err := s.store.UpdateArticle(r.Context(), &article); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// handleDeleteArticle godoc
//
//	@Summary		Delete an article
//	@Description	Delete an article the caller authored. Reactions are removed with it.
//	@Tags			Articles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Article ID"
//	@Success		200	{object}	map[string]string
//	@Failure		401	{object}	map[string]string	"Authentication required"
//	@Failure		404	{object}	map[string]string	"Not found or not the author"
//	@Router			/api/articles/{id} [delete]
func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request, idStr string) {
	current, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	articleID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		notFound(w)
		return
	}
	if err := s.store.DeleteArticle(r.Context(), articleID, current.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Article deleted"})
}

// handleListCategories godoc
//
//	@Summary		List article categories
//	@Tags			Articles
//	@Produce		json
//	@Success		200	{array}	string
//	@Router			/api/categories [get]
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": model.Categories})
}

// handleGetStats godoc
//
//	@Summary		Get site statistics
//	@Description	Get counts of registered users and published articles
//	@Tags			Stats
//	@Produce		json
//	@Success		200	{object}	map[string]any	"Site statistics"
//	@Router			/api/stats [get]
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetSiteStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users":    stats.Users,
		"articles": stats.Articles,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    s.cfg.Version,
		"commit":     s.cfg.Commit,
		"build_time": s.cfg.BuildTime,
	})
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(doc))
}

func (s *Server) serveOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml; charset=utf-8")
	w.Write([]byte(doc))
}

func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(strings.TrimPrefix(r.URL.Path, "/uploads/"))
	if name == "." || name == "/" {
		notFound(w)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.cfg.UploadDir, name))
}

// saveUpload stores the named multipart file under a random filename and
// returns its public URL path. A missing file is not an error.
func (s *Server) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(s.cfg.UploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

func (s *Server) allowRateLimit(w http.ResponseWriter, r *http.Request, action string, limit int) bool {
	if limit <= 0 {
		return true
	}
	ipKey := fmt.Sprintf("%s:ip:%s", action, s.clientIP(r))
	if ok, retry := s.limiter.Allow(ipKey, limit, time.Minute); !ok {
		writeRateLimit(w, retry)
		return false
	}
	return true
}

func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
		return model.User{}, false
	}
	bearer := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	user, err := s.auth.Authenticate(r.Context(), bearer)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return model.User{}, false
	}
	return user, true
}

func (s *Server) clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// authStatus maps known auth service errors to a client status; everything
// unrecognized is a 500.
func authStatus(err error, clientStatus int) int {
	switch {
	case errors.Is(err, auth.ErrValidation),
		errors.Is(err, auth.ErrConflict),
		errors.Is(err, auth.ErrNotFound),
		errors.Is(err, auth.ErrOTPExpired),
		errors.Is(err, auth.ErrOTPMismatch),
		errors.Is(err, auth.ErrDelivery),
		errors.Is(err, auth.ErrInvalidCredentials):
		return clientStatus
	default:
		return http.StatusInternalServerError
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func splitCSV(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeRateLimit(w http.ResponseWriter, retry time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate limit exceeded",
		"retry_after": int(retry.Seconds()),
	})
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func parseIntDefault(value string, def int) int {
	if value == "" {
		return def
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return def
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
