// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	signInPath  = "/users/sign_in"
	profilePath = "/-/user_settings/profile"
	tokensPath  = "/-/user_settings/personal_access_tokens"

	tokenName = "full-access-token"
)

// tokenScopes is the fixed broad scope set requested for the minted token.
var tokenScopes = []string{
	"api", "read_api", "read_user", "create_runner", "manage_runner",
	"k8s_proxy", "read_repository", "write_repository", "ai_features",
	"sudo", "admin_mode", "read_service_ping",
}

// Session is a cookie-carrying web session against a GitLab instance, used
// solely to sign in and mint a personal access token.
type Session struct {
	BaseURL    string
	Username   string
	Password   string
	Logger     logr.Logger
	Strategies []CSRFStrategy

	httpClient *http.Client
}

// NewSession builds a session with a retrying HTTP client and a cookie jar.
func NewSession(baseURL, username, password string, logger logr.Logger) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil
	retryClient.HTTPClient.Jar = jar
	retryClient.HTTPClient.Timeout = 30 * time.Second

	return &Session{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Username:   username,
		Password:   password,
		Logger:     logger.WithName("token-session"),
		Strategies: DefaultCSRFStrategies,
		httpClient: retryClient.StandardClient(),
	}, nil
}

// Mint signs in and creates a personal access token in one go.
func (s *Session) Mint(ctx context.Context) (string, error) {
	if err := s.Login(ctx); err != nil {
		return "", err
	}

	return s.CreateToken(ctx)
}

// Login performs the HTML sign-in flow and verifies it by loading the
// profile page and checking the username appears in the body. That check is
// a heuristic: GitLab gives no structured success signal on this path.
func (s *Session) Login(ctx context.Context) error {
	doc, _, err := s.getPage(ctx, signInPath)
	if err != nil {
		return err
	}

	csrf, strategy, err := ExtractCSRF(doc, s.Strategies)
	if err != nil {
		return errors.Wrap(err, "extracting sign-in authenticity token")
	}

	s.Logger.Info("extracted sign-in authenticity token", "strategy", strategy)

	form := url.Values{}
	form.Set("user[login]", s.Username)
	form.Set("user[password]", s.Password)
	form.Set("user[remember_me]", "0")
	form.Set("authenticity_token", csrf)

	status, _, err := s.postForm(ctx, signInPath, form)
	if err != nil {
		return err
	}

	if status != http.StatusOK && status != http.StatusFound {
		return errors.Errorf("sign-in returned unexpected status %d", status)
	}

	_, profile, err := s.getPage(ctx, profilePath)
	if err != nil {
		return errors.Wrap(err, "verifying sign-in via profile page")
	}

	if !strings.Contains(strings.ToLower(profile), strings.ToLower(s.Username)) {
		return errors.Errorf("sign-in for %q not confirmed by profile page", s.Username)
	}

	s.Logger.Info("signed in", "username", s.Username)

	return nil
}

// CreateToken submits the personal-access-token creation form with the
// fixed scope set and no expiry, then extracts the minted token from the
// response. When the response does not carry the token, the token list page
// is fetched once more and pattern-searched.
func (s *Session) CreateToken(ctx context.Context) (string, error) {
	doc, _, err := s.getPage(ctx, tokensPath)
	if err != nil {
		return "", err
	}

	form, err := locateTokenForm(doc)
	if err != nil {
		return "", err
	}

	csrf, strategy, err := extractFormCSRF(doc, form)
	if err != nil {
		return "", err
	}

	s.Logger.Info("extracted token-form authenticity token", "strategy", strategy)

	values := url.Values{}
	values.Set("authenticity_token", csrf)
	values.Set("personal_access_token[name]", tokenName)
	values.Set("personal_access_token[expires_at]", "")
	for _, scope := range tokenScopes {
		values.Add("personal_access_token[scopes][]", scope)
	}

	status, body, err := s.postForm(ctx, tokensPath, values)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK && status != http.StatusFound {
		return "", errors.Errorf("token creation returned unexpected status %d: %s", status, truncate(body, 500))
	}

	responseDoc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "parsing token creation response")
	}

	if token, ok := ExtractPersonalAccessToken(responseDoc, body); ok {
		s.Logger.Info("personal access token created")

		return token, nil
	}

	// Some GitLab versions only show the token on the list page.
	listDoc, listBody, err := s.getPage(ctx, tokensPath)
	if err != nil {
		return "", errors.Wrap(err, "re-fetching token list page")
	}

	if token, ok := ExtractPersonalAccessToken(listDoc, listBody); ok {
		s.Logger.Info("personal access token created")

		return token, nil
	}

	return "", errors.New("token creation succeeded but no token found in response or token list")
}

// locateTokenForm finds the token creation form, first by action substring,
// then by its known id.
func locateTokenForm(doc *goquery.Document) (*goquery.Selection, error) {
	var form *goquery.Selection

	doc.Find("form").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		action, _ := sel.Attr("action")
		if strings.Contains(action, "personal_access_tokens") {
			form = sel

			return false
		}

		return true
	})

	if form == nil {
		if sel := doc.Find("form#new_personal_access_token").First(); sel.Length() > 0 {
			form = sel
		}
	}

	if form == nil {
		return nil, errors.New("personal access token creation form not found")
	}

	return form, nil
}

// extractFormCSRF prefers the hidden input inside the form, falling back to
// the page-level meta tag.
func extractFormCSRF(doc *goquery.Document, form *goquery.Selection) (string, string, error) {
	if value, ok := attrValue(form.Find(`input[name="authenticity_token"]`).First(), "value"); ok {
		return value, "form-input-field", nil
	}

	if value, ok := attrValue(doc.Find(`meta[name="csrf-token"]`).First(), "content"); ok {
		return value, "meta-csrf-token", nil
	}

	return "", "", errors.New("no authenticity token found for the token creation form")
}

func (s *Session) getPage(ctx context.Context, path string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return nil, "", errors.Wrapf(err, "building request for %s", path)
	}

	s.browserHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetching %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Errorf("fetching %s returned status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrapf(err, "reading %s response", path)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, "", errors.Wrapf(err, "parsing %s", path)
	}

	return doc, string(body), nil
}

func (s *Session) postForm(ctx context.Context, path string, values url.Values) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return 0, "", errors.Wrapf(err, "building request for %s", path)
	}

	s.browserHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", errors.Wrapf(err, "posting %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", errors.Wrapf(err, "reading %s response", path)
	}

	return resp.StatusCode, string(body), nil
}

// browserHeaders makes the session look like an interactive browser; some
// GitLab middlewares treat bare clients differently.
func (s *Session) browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit]
}
