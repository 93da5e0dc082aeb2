package echoapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/user"
)

const (
	webhookIDHeader        = "svix-id"
	webhookTimestampHeader = "svix-timestamp"
	webhookSignatureHeader = "svix-signature"
)

type sessionApi struct {
	svc    *user.Service
	conf   *core.Config
	logger core.Logger
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := sessionApi{svc: s.usrSvc, conf: s.conf, logger: s.logger}

	g.GET("/auth/validate", api.validate, jwt)
	g.POST("/webhooks/identity", api.syncIdentity)
}

// validate confirms the session belongs to a provisioned user & refreshes their name.
func (api *sessionApi) validate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	usr, err := api.svc.SyncProfile(ctx.Request().Context(), claims.Email, claims.Name)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ctx.JSON(http.StatusForbidden, echo.Map{"error": accessDeniedMsg, "unauthorized": true})
		}
		return errors.Wrap(err, "syncing user profile")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "user": usr.Summary()})
}

type (
	identityEmail struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	}

	identityEvent struct {
		Type string `json:"type"`
		Data struct {
			ID                    string          `json:"id"`
			EmailAddresses        []identityEmail `json:"email_addresses"`
			PrimaryEmailAddressID string          `json:"primary_email_address_id"`
			FirstName             string          `json:"first_name"`
			LastName              string          `json:"last_name"`
		} `json:"data"`
	}
)

func (evt identityEvent) primaryEmail() string {
	for _, e := range evt.Data.EmailAddresses {
		if e.ID == evt.Data.PrimaryEmailAddressID {
			return core.CleanString(e.EmailAddress, true /* lower */)
		}
	}
	return ""
}

// VerifyWebhookSignature checks a "v1,<hex>" signature list (space separated)
// against HMAC-SHA256(secret, "<id>.<timestamp>.<payload>").
func VerifyWebhookSignature(secret, id, timestamp, signatures string, payload []byte) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(id + "." + timestamp + "."))
	_, _ = mac.Write(payload)
	want := mac.Sum(nil)

	for _, sig := range strings.Fields(signatures) {
		parts := strings.SplitN(sig, ",", 2)
		if len(parts) != 2 {
			continue
		}
		got, err := hex.DecodeString(parts[1])
		if err != nil {
			continue
		}
		if hmac.Equal(got, want) {
			return true
		}
	}
	return false
}

// syncIdentity handles the identity provider's user.created & user.updated events.
// Verification is skipped when no webhook secret is configured.
func (api *sessionApi) syncIdentity(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading webhook payload")
	}

	if api.conf.WebhookSecret != "" {
		h := ctx.Request().Header
		if !VerifyWebhookSignature(api.conf.WebhookSecret, h.Get(webhookIDHeader), h.Get(webhookTimestampHeader), h.Get(webhookSignatureHeader), payload) {
			api.logger.Warn("webhook signature verification failed")
			return errInvalidSignature
		}
	}

	var evt identityEvent
	if err = json.Unmarshal(payload, &evt); err != nil {
		return core.NewValidationMessage("invalid webhook payload")
	}

	switch evt.Type {
	case "user.created", "user.updated":
		email := evt.primaryEmail()
		if email == "" {
			return errNoPrimaryEmail
		}
		name := strings.TrimSpace(evt.Data.FirstName + " " + evt.Data.LastName)
		if _, err = api.svc.SyncProfile(ctx.Request().Context(), email, name); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				api.logger.Warn("unauthorized access attempt: " + email)
				return errUnprovisionedUser
			}
			return errors.Wrap(err, "syncing user profile")
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true})
}
