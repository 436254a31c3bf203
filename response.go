package frontauth

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
)

// Outcome is the Login Orchestrator's result: either a new
// FrontAuthenticationInfo to commit, or a structured error. It mirrors
// internal/flows.Outcome at the public API boundary.
type Outcome struct {
	Info FrontAuthenticationInfo
	Err  *LoginError
}

// responseJSON is the wire shape spec §4.5 defines. The same struct
// serves both the success and failure cases — the error fields are
// omitted (via omitempty) on success.
type responseJSON struct {
	Info        *AuthenticationInfo `json:"info"`
	Token       string              `json:"token,omitempty"`
	Refreshable bool                `json:"refreshable"`
	RememberMe  bool                `json:"rememberMe"`

	ErrorID            string `json:"errorId,omitempty"`
	ErrorText          string `json:"errorText,omitempty"`
	InitialScheme      string `json:"initialScheme,omitempty"`
	CallingScheme      string `json:"callingScheme,omitempty"`
	UserData           any    `json:"userData,omitempty"`
	LoginFailureCode   *int   `json:"loginFailureCode,omitempty"`
	LoginFailureReason string `json:"loginFailureReason,omitempty"`
}

// BuildResponse implements the Response Builder (C5, spec §4.5). It
// formats outcome as the JSON body the client SDK expects, then delivers
// it one of three ways depending on lc's return mode: a direct JSON body
// (neither ReturnURL nor CallerOrigin set — refresh/impersonate/API
// calls), a 302 redirect with error params appended (ReturnURL set), or a
// popup page that postMessages the body to CallerOrigin and closes itself.
func (e *Engine) BuildResponse(w http.ResponseWriter, lc *LoginContext, outcome Outcome) error {
	body, err := e.responseBody(lc, outcome)
	if err != nil {
		return err
	}

	switch {
	case lc.ReturnURL != "":
		writeRedirect(w, lc, outcome.Err)
		return nil
	case lc.CallerOrigin != "":
		return writePostMessage(w, lc.CallerOrigin, body)
	default:
		w.Header().Set("Content-Type", "application/json")
		if outcome.Err != nil {
			w.WriteHeader(http.StatusUnauthorized)
		}
		return json.NewEncoder(w).Encode(body)
	}
}

func (e *Engine) responseBody(lc *LoginContext, outcome Outcome) (responseJSON, error) {
	dyn := e.dynamicOptions()
	now := e.clock()

	info := outcome.Info.Info
	body := responseJSON{
		Info:        &info,
		Refreshable: info.Level(now) >= LevelNormal && dyn.SlidingExpirationTime > 0,
		RememberMe:  outcome.Info.RememberMe,
	}

	if outcome.Err == nil {
		token, err := e.codec.EncodeToken(outcome.Info)
		if err != nil {
			return responseJSON{}, err
		}
		body.Token = token
		return body, nil
	}

	le := outcome.Err
	body.InitialScheme = lc.InitialScheme
	body.CallingScheme = lc.CallingScheme
	body.UserData = lc.UserData
	if le.HasLoginFailure {
		code := le.LoginFailureCode
		body.LoginFailureCode = &code
		body.LoginFailureReason = le.LoginFailureReason
	} else {
		body.ErrorID = string(le.ID)
		if le.Text != "" && le.Text != string(le.ID) {
			body.ErrorText = le.Text
		}
	}
	return body, nil
}

// writeRedirect implements the failure return mode's 302 (spec §4.5):
// errorId and errorText (or loginFailureCode and loginFailureReason),
// initialScheme, and callingScheme are appended as query parameters on
// lc.ReturnURL. A successful outcome redirects to lc.ReturnURL unchanged.
func writeRedirect(w http.ResponseWriter, lc *LoginContext, loginErr *LoginError) {
	target, err := url.Parse(lc.ReturnURL)
	if err != nil {
		http.Error(w, "invalid return url", http.StatusBadRequest)
		return
	}

	if loginErr == nil {
		w.Header().Set("Location", target.String())
		w.WriteHeader(http.StatusFound)
		return
	}

	q := target.Query()
	if loginErr.HasLoginFailure {
		q.Set("loginFailureCode", fmt.Sprintf("%d", loginErr.LoginFailureCode))
		if loginErr.LoginFailureReason != "" {
			q.Set("loginFailureReason", loginErr.LoginFailureReason)
		}
	} else {
		q.Set("errorId", string(loginErr.ID))
		if loginErr.Text != "" && loginErr.Text != string(loginErr.ID) {
			q.Set("errorText", loginErr.Text)
		}
	}
	if lc.InitialScheme != "" {
		q.Set("initialScheme", lc.InitialScheme)
	}
	if lc.CallingScheme != "" {
		q.Set("callingScheme", lc.CallingScheme)
	}
	target.RawQuery = q.Encode()

	w.Header().Set("Location", target.String())
	w.WriteHeader(http.StatusFound)
}

var postMessageTemplate = template.Must(template.New("postMessage").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"></head><body><script>
(function() {
  var payload = {{.Body}};
  if (window.opener) {
    window.opener.postMessage(payload, "{{.Origin}}");
  }
  window.close();
})();
</script></body></html>`))

type postMessageData struct {
	Body   template.JS
	Origin string
}

// writePostMessage implements the popup return mode (spec §4.5): the
// response body is embedded as a JS object literal and posted to
// CallerOrigin. json.Marshal HTML-escapes '<', '>', and '&' by default,
// which is what keeps a malicious userData string from breaking out of
// the inline <script> block; html/template's contextual autoescaping
// handles Origin as a JS string literal.
func writePostMessage(w http.ResponseWriter, callerOrigin string, body responseJSON) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return postMessageTemplate.Execute(w, postMessageData{
		Body:   template.JS(encoded),
		Origin: callerOrigin,
	})
}
