// API service for the holiday-manager backend
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/pipeline"
	"github.com/desertthunder/hmx/internal/shared"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// APIService implements [API] on top of a [pipeline.Pipeline].
type APIService struct {
	baseURL       string
	pipeline      *pipeline.Pipeline
	onAuthFailure func()
	logger        *log.Logger
}

// Option configures an [APIService].
type Option func(*APIService)

// WithAuthFailure sets the callback attached to every call for failed credential refreshes.
func WithAuthFailure(fn func()) Option {
	return func(a *APIService) { a.onAuthFailure = fn }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(a *APIService) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAPIService creates a new API service instance. A nil pipeline gets a default one for baseURL.
func NewAPIService(baseURL string, p *pipeline.Pipeline, opts ...Option) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if p == nil {
		p = pipeline.New(baseURL)
	}

	a := &APIService{baseURL: baseURL, pipeline: p, logger: shared.DiscardLogger()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the API root.
func (a *APIService) BaseURL() string { return a.baseURL }

func (a *APIService) endpoint(path string, query url.Values) string {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (a *APIService) execute(ctx context.Context, d pipeline.Descriptor) (json.RawMessage, error) {
	if a.onAuthFailure != nil {
		d = d.WithAuthFailure(a.onAuthFailure)
	}
	payload, err := a.pipeline.Execute(ctx, d)
	if err != nil {
		a.logger.Debug("api call failed", "method", d.Method(), "url", d.URL(), "cause", pipeline.CauseOf(err), "error", err)
	}
	return payload, err
}

// envelope is the server's response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
}

// decodeData unwraps the {"data": ...} envelope of payload into T.
func decodeData[T any](payload json.RawMessage) (T, error) {
	var zero T
	if payload == nil {
		return zero, shared.ErrEmptyResponse
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return zero, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	if env.Error != nil && *env.Error != "" {
		return zero, fmt.Errorf("%w: %s", shared.ErrAPIRequest, *env.Error)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, shared.ErrEmptyResponse
	}

	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, fmt.Errorf("%w: unexpected data: %v", shared.ErrNetwork, err)
	}
	return out, nil
}

// call executes d and discards any payload.
func (a *APIService) call(ctx context.Context, d pipeline.Descriptor) error {
	_, err := a.execute(ctx, d)
	return err
}

// Login posts credentials; the server answers with credential cookies.
func (a *APIService) Login(ctx context.Context, credentials models.Credentials) error {
	return a.call(ctx, pipeline.Post(a.endpoint("/login", nil), credentials))
}

// Logout asks the server to expire the credential cookies.
func (a *APIService) Logout(ctx context.Context) error {
	return a.call(ctx, pipeline.Post(a.endpoint("/logout", nil), nil))
}

// Role returns the signed-in user's role. Unknown roles wrap [shared.ErrUnknownRole].
func (a *APIService) Role(ctx context.Context) (models.Role, error) {
	payload, err := a.execute(ctx, pipeline.Get(a.endpoint("/users/in/role", nil)))
	if err != nil {
		return "", err
	}

	raw, err := decodeData[string](payload)
	if err != nil {
		return "", err
	}
	role, err := models.ParseRole(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUnknownRole, err)
	}
	return role, nil
}

// Profile returns the signed-in user.
func (a *APIService) Profile(ctx context.Context) (*models.User, error) {
	payload, err := a.execute(ctx, pipeline.Get(a.endpoint("/users/in/user", nil)))
	if err != nil {
		return nil, err
	}
	user, err := decodeData[models.User](payload)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Access checks that the current credentials are accepted.
func (a *APIService) Access(ctx context.Context) error {
	return a.call(ctx, pipeline.Get(a.endpoint("/users/in/access", nil)))
}

// Register creates an account and returns its ID. The account must be activated before login.
func (a *APIService) Register(ctx context.Context, user models.CreateUser) (int64, error) {
	payload, err := a.execute(ctx, pipeline.Post(a.endpoint("/users", nil), user))
	if err != nil {
		return 0, err
	}
	return decodeData[int64](payload)
}

// Activate confirms a registration with the emailed token.
func (a *APIService) Activate(ctx context.Context, token string) error {
	return a.call(ctx, pipeline.Patch(a.endpoint("/users", nil), models.ActivationToken{Token: token}))
}

// ResendActivation requests a fresh activation email.
func (a *APIService) ResendActivation(ctx context.Context, email string) error {
	return a.call(ctx, pipeline.Post(a.endpoint("/users/refresh", nil), models.Email{Email: email}))
}

// User fetches one user by ID.
func (a *APIService) User(ctx context.Context, id int64) (*models.User, error) {
	payload, err := a.execute(ctx, pipeline.Get(a.endpoint("/users/"+strconv.FormatInt(id, 10), nil)))
	if err != nil {
		return nil, err
	}
	user, err := decodeData[models.User](payload)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FilterUsers lists users matching filter.
func (a *APIService) FilterUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	payload, err := a.execute(ctx, pipeline.Patch(a.endpoint("/users/filter", nil), filter))
	if err != nil {
		return nil, err
	}
	return listData[models.User](payload)
}

// UpdateUser changes a user's allowance or role.
func (a *APIService) UpdateUser(ctx context.Context, update models.UpdateUser) error {
	return a.call(ctx, pipeline.Patch(a.endpoint("/users/update", nil), update))
}

// DeleteUser removes a user (admin).
func (a *APIService) DeleteUser(ctx context.Context, id int64) error {
	query := url.Values{"userId": {strconv.FormatInt(id, 10)}}
	return a.call(ctx, pipeline.Delete(a.endpoint("/users", query)))
}

// DeleteAccount removes the signed-in user's own account.
func (a *APIService) DeleteAccount(ctx context.Context) error {
	return a.call(ctx, pipeline.Delete(a.endpoint("/users/in", nil)))
}

func (a *APIService) ChangeEmail(ctx context.Context, change models.NewEmail) error {
	return a.call(ctx, pipeline.Patch(a.endpoint("/users/in/email", nil), change))
}

func (a *APIService) ChangePassword(ctx context.Context, change models.ChangePassword) error {
	return a.call(ctx, pipeline.Patch(a.endpoint("/users/in/password", nil), change))
}

// LostPassword emails a password reset token.
func (a *APIService) LostPassword(ctx context.Context, email string) error {
	return a.call(ctx, pipeline.Patch(a.endpoint("/users/lost", nil), models.Email{Email: email}))
}

// NewPassword sets a password with a reset token.
func (a *APIService) NewPassword(ctx context.Context, reset models.NewPassword) error {
	return a.call(ctx, pipeline.Patch(a.endpoint("/users/new", nil), reset))
}

// RequestHoliday submits a holiday request and returns its ID.
func (a *APIService) RequestHoliday(ctx context.Context, holiday models.CreateHoliday) (int64, error) {
	payload, err := a.execute(ctx, pipeline.Post(a.endpoint("/holidays", nil), holiday))
	if err != nil {
		return 0, err
	}
	return decodeData[int64](payload)
}

// Holidays lists the signed-in user's holidays within an optional range.
func (a *APIService) Holidays(ctx context.Context, start, end models.LocalDateTime) ([]models.Holiday, error) {
	query := url.Values{}
	if !start.IsZero() {
		query.Set("startDate", start.String())
	}
	if !end.IsZero() {
		query.Set("endDate", end.String())
	}

	payload, err := a.execute(ctx, pipeline.Get(a.endpoint("/holidays", query)))
	if err != nil {
		return nil, err
	}
	return listData[models.Holiday](payload)
}

// FilterHolidays lists holidays across users.
func (a *APIService) FilterHolidays(ctx context.Context, filter models.HolidayFilter) ([]models.Holiday, error) {
	payload, err := a.execute(ctx, pipeline.Post(a.endpoint("/holidays/filter", nil), filter))
	if err != nil {
		return nil, err
	}
	return listData[models.Holiday](payload)
}

// SetHolidayStatus records a review decision.
func (a *APIService) SetHolidayStatus(ctx context.Context, holidayID int64, status models.Status) error {
	query := url.Values{
		"holidayId": {strconv.FormatInt(holidayID, 10)},
		"status":    {string(status)},
	}
	return a.call(ctx, pipeline.Patch(a.endpoint("/holidays", query), nil))
}

// listData decodes a list envelope; an absent or null list is empty, not an error.
func listData[T any](payload json.RawMessage) ([]T, error) {
	items, err := decodeData[[]T](payload)
	if errors.Is(err, shared.ErrEmptyResponse) {
		return []T{}, nil
	}
	return items, err
}
