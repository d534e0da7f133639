package httpapi

import (
	"github.com/authcore/authcore/internal/oauth"
	"github.com/authcore/authcore/internal/policy"
	"github.com/gofiber/fiber/v2"
)

// oauthHandlers implements spec.md §6's /oauth endpoints: authenticated
// authorize, the token exchange (form or JSON body; the grant type must
// match the stored code's), and revoke.
type oauthHandlers struct {
	engine *oauth.Engine
}

type authorizeBody struct {
	ClientID    string   `json:"clientId"`
	RedirectURI string   `json:"redirectUri"`
	Scope       []string `json:"scope"`
}

func (h *oauthHandlers) authorize(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !policy.CanAuthorizeOAuth(p) {
		return forbidden(c, "not permitted")
	}

	var body authorizeBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.engine.Authorize(c.Context(), p.UserID, oauth.AuthorizeRequest{
		ClientID:    body.ClientID,
		RedirectURI: body.RedirectURI,
		Scope:       body.Scope,
	})
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, "authorized", fiber.Map{
		"clientId":    result.ClientID,
		"redirectUri": result.RedirectURI,
		"code":        result.Code,
	})
}

// token implements the exchange step for both form-urlencoded and JSON
// bodies (spec.md §4.7's Rationale: "the token endpoint accepts either
// encoding, matching what real OAuth2 clients send").
func (h *oauthHandlers) token(c *fiber.Ctx) error {
	req := oauth.ExchangeRequest{
		ClientID:     c.FormValue("client_id"),
		ClientSecret: c.FormValue("client_secret"),
		GrantType:    c.FormValue("grant_type"),
		Code:         c.FormValue("code"),
		RedirectURI:  c.FormValue("redirect_uri"),
	}

	if req.Code == "" {
		var body struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
			GrantType    string `json:"grant_type"`
			Code         string `json:"code"`
			RedirectURI  string `json:"redirect_uri"`
		}
		if err := c.BodyParser(&body); err == nil {
			req = oauth.ExchangeRequest{
				ClientID:     body.ClientID,
				ClientSecret: body.ClientSecret,
				GrantType:    body.GrantType,
				Code:         body.Code,
				RedirectURI:  body.RedirectURI,
			}
		}
	}

	result, err := h.engine.Exchange(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}

	// spec.md line 159: every endpoint except this one wraps its response in
	// the {status,message,data} envelope — the token endpoint returns the
	// bare RFC 6749 shape instead, matching original_source's TokenOAuthResponse.
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token": result.AccessToken,
		"token_type":   result.TokenType,
		"expires_in":   result.ExpiresIn,
		"scope":        result.Scope,
	})
}

func (h *oauthHandlers) revoke(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsToken() {
		return forbidden(c, "revoke requires a token principal")
	}

	if err := h.engine.Revoke(c.Context(), p.Token.ID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "revoked", nil)
}
