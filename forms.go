package mkmtrees

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContactForm is the public contact-form payload.
type ContactForm struct {
	Name           string `json:"name" form:"name"`
	Email          string `json:"email" form:"email"`
	Phone          string `json:"phone" form:"phone"`
	Subject        string `json:"subject" form:"subject"`
	ServiceType    string `json:"service_type" form:"service_type"`
	Message        string `json:"message" form:"message"`
	TurnstileToken string `json:"turnstile_token" form:"cf-turnstile-response"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validEmail accepts a bare address only, no display name.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

// errBotCheck is the validation failure for a rejected bot token.
var errBotCheck = badRequest("Verification failed. Please try again.")

// submitContact validates f, checks the bot token when a verifier is
// configured, and stores the submission.
func (a *App) submitContact(ctx context.Context, f ContactForm, remoteIP string) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = normalizeEmail(f.Email)
	f.Message = strings.TrimSpace(f.Message)
	if err := requireFields(field("name", f.Name), field("email", f.Email), field("message", f.Message)); err != nil {
		return err
	}
	if !validEmail(f.Email) {
		return badRequest("Invalid email address")
	}
	if a.Verifier != nil {
		ok, err := a.Verifier.Verify(ctx, f.TurnstileToken, remoteIP)
		if err != nil {
			return internalError("Verification unavailable", err)
		}
		if !ok {
			return errBotCheck
		}
	}
	if a.Store == nil {
		return unavailable("Database")
	}
	_, err := a.Store.CreateSubmission(ctx, Submission{
		Name:        f.Name,
		Email:       f.Email,
		Phone:       strings.TrimSpace(f.Phone),
		Subject:     strings.TrimSpace(f.Subject),
		ServiceType: strings.TrimSpace(f.ServiceType),
		Message:     f.Message,
		CreatedAt:   timestamp(now()),
	})
	if err != nil {
		return internalError("Failed to send message", err)
	}
	return nil
}

func (a *App) handleContact(c echo.Context) error {
	var f ContactForm
	if err := bindJSON(c, &f); err != nil {
		return err
	}
	if err := a.submitContact(c.Request().Context(), f, c.RealIP()); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, apiMessage{Message: "Thanks for getting in touch. We'll reply soon."})
}

type newsletterRequest struct {
	Email  string `json:"email" form:"email"`
	Source string `json:"source" form:"source"`
}

// handleNewsletter subscribes an email: new addresses are inserted, active
// ones are left alone, and lapsed ones are reactivated in place.
func (a *App) handleNewsletter(c echo.Context) error {
	var req newsletterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	email := normalizeEmail(req.Email)
	if err := requireFields(field("email", email)); err != nil {
		return err
	}
	if !validEmail(email) {
		return badRequest("Invalid email address")
	}
	if a.Store == nil {
		return unavailable("Database")
	}
	ctx := c.Request().Context()
	ts := timestamp(now())
	sub, err := a.Store.GetSubscriberByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		source := strings.TrimSpace(req.Source)
		if source == "" {
			source = "website"
		}
		if _, err := a.Store.CreateSubscriber(ctx, email, source, ts); err != nil {
			return internalError("Failed to subscribe", err)
		}
		return c.JSON(http.StatusCreated, apiMessage{Message: "Welcome! You're subscribed to our newsletter."})
	case err != nil:
		return internalError("Failed to subscribe", err)
	case sub.Status == SubscriberActive:
		return c.JSON(http.StatusOK, apiMessage{Message: "You're already subscribed."})
	}
	if err := a.Store.ReactivateSubscriber(ctx, sub.ID, ts); err != nil {
		return internalError("Failed to subscribe", err)
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Welcome back! Your subscription is active again."})
}

// handleUnsubscribe answers the same way whether or not the email is on
// the list.
func (a *App) handleUnsubscribe(c echo.Context) error {
	var req newsletterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	email := normalizeEmail(req.Email)
	if err := requireFields(field("email", email)); err != nil {
		return err
	}
	if a.Store == nil {
		return unavailable("Database")
	}
	ctx := c.Request().Context()
	sub, err := a.Store.GetSubscriberByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return internalError("Failed to unsubscribe", err)
	}
	if err == nil && sub.Status == SubscriberActive {
		if err := a.Store.SetSubscriberStatus(ctx, sub.ID, SubscriberUnsubscribed, timestamp(now())); err != nil {
			return internalError("Failed to unsubscribe", err)
		}
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "You have been unsubscribed."})
}
