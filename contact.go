package docket

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/docket/views"
)

const (
	msgTooManyRequests = "Too many requests. Please try again in a minute."
	msgSendFailed      = "Failed to send message."
	msgInvalid         = "Please correct the highlighted fields."
	msgSent            = "Thanks, your message has been sent."

	flashSent  = "contact_sent"
	flashError = "contact_error"
)

// ContactRequest is the body of a contact submission, JSON or form encoded.
type ContactRequest struct {
	Name    string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" form:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" form:"message" validate:"required,min=10,max=5000"`
}

func (r *ContactRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
}

// ValidationError maps field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, m := range e.Fields {
		parts = append(parts, f+": "+m)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// contactValidator adapts go-playground/validator to echo.Validator and
// reports fields by their JSON names.
type contactValidator struct {
	v *validator.Validate
}

func newContactValidator() *contactValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &contactValidator{v: v}
}

func (cv *contactValidator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// allowContact applies the per-IP sliding window. A failing store lets
// the request through.
func (a *App) allowContact(c echo.Context) (bool, time.Duration) {
	ip := c.RealIP()
	ok, retry, err := a.contactLimiter.Allow(c.Request().Context(), ip)
	if err != nil {
		a.Logger.ErrorContext(c.Request().Context(), "rate limit store", "ip", ip, "error", err)
		return true, 0
	}
	if !ok {
		a.metrics.contactTotal.WithLabelValues("rate_limited").Inc()
		a.Logger.InfoContext(c.Request().Context(), "contact rate limited", "ip", ip, "retry_after", retry)
	}
	return ok, retry
}

func (a *App) sendContact(c echo.Context, req ContactRequest) (string, error) {
	msg := Message{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		Subject:    req.Subject,
		Body:       req.Message,
		RemoteIP:   c.RealIP(),
		ReceivedAt: time.Now().UTC(),
	}
	if err := a.mailer.Send(c.Request().Context(), msg); err != nil {
		a.metrics.contactTotal.WithLabelValues("error").Inc()
		a.Logger.ErrorContext(c.Request().Context(), "send contact message", "id", msg.ID, "error", err)
		return "", err
	}
	a.metrics.contactTotal.WithLabelValues("sent").Inc()
	a.Logger.InfoContext(c.Request().Context(), "contact message sent", "id", msg.ID)
	return msg.ID, nil
}

func retryAfterHeader(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

func (a *App) handleContactAPI(c echo.Context) error {
	if ok, retry := a.allowContact(c); !ok {
		c.Response().Header().Set("Retry-After", retryAfterHeader(retry))
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": msgTooManyRequests})
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		a.metrics.contactTotal.WithLabelValues("invalid").Inc()
		a.Logger.InfoContext(c.Request().Context(), "contact bind", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body."})
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		a.metrics.contactTotal.WithLabelValues("invalid").Inc()
		resp := map[string]any{"error": msgInvalid}
		var verr *ValidationError
		if errors.As(err, &verr) {
			resp["fields"] = verr.Fields
		}
		a.Logger.InfoContext(c.Request().Context(), "contact rejected", "error", err)
		return c.JSON(http.StatusBadRequest, resp)
	}

	id, err := a.sendContact(c, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgSendFailed})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "id": id})
}

func (a *App) contactPage(c echo.Context) views.ContactPage {
	return views.ContactPage{
		Site:      a.site(),
		Meta:      a.pageMeta("Contact", "", "contact"),
		CSRFToken: CsrfToken(c),
		Errors:    map[string]string{},
	}
}

func (a *App) handleContactPage(c echo.Context) error {
	page := a.contactPage(c)
	flashes, err := takeFlashes(c, flashSent, flashError)
	if err != nil {
		a.Logger.WarnContext(c.Request().Context(), "read flash", "error", err)
	}
	if msg, ok := flashes[flashSent]; ok {
		page.Sent = true
		page.Flash = msg
	} else if msg, ok := flashes[flashError]; ok {
		page.Flash = msg
	}
	return Render(c, a.Views.Contact(page))
}

// handleContactForm is the browser form variant: successes and send
// failures redirect back to the form with a flash message.
func (a *App) handleContactForm(c echo.Context) error {
	if ok, _ := a.allowContact(c); !ok {
		return a.redirectWithFlash(c, flashError, msgTooManyRequests)
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		a.metrics.contactTotal.WithLabelValues("invalid").Inc()
		page := a.contactPage(c)
		page.Form = views.ContactForm{Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message}
		page.Flash = msgInvalid
		var verr *ValidationError
		if errors.As(err, &verr) {
			page.Errors = verr.Fields
		}
		return RenderStatus(c, http.StatusBadRequest, a.Views.Contact(page))
	}

	if _, err := a.sendContact(c, req); err != nil {
		return a.redirectWithFlash(c, flashError, msgSendFailed)
	}
	return a.redirectWithFlash(c, flashSent, msgSent)
}

func (a *App) redirectWithFlash(c echo.Context, key, msg string) error {
	if err := addFlash(c, key, msg); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact/")
}
