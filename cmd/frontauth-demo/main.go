// Command frontauth-demo is a minimal HTTP server exercising the full
// frontauth engine end to end, for manual smoke testing.
//
// It starts a local server on :8080 backed by miniredis (no external Redis
// required) with a single seeded user and a "password" login scheme.
//
// Endpoints:
//
//	POST /login     — JSON {"username":"...", "password":"..."}
//	POST /logout    — clears the session and long-term cookies
//	GET  /protected — requires LevelNormal (a live, non-expired session)
//
// Run:
//
//	go run ./cmd/frontauth-demo
//
// Then:
//
//	curl -i -c jar.txt -X POST localhost:8080/login \
//	  -H 'Content-Type: application/json' \
//	  -d '{"username":"alice","password":"correct-horse"}'
//
//	curl -i -b jar.txt localhost:8080/protected
//
//	curl -i -b jar.txt -c jar.txt -X POST localhost:8080/logout
package main

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/nordframe/frontauth"
	"github.com/nordframe/frontauth/internal/authinfo"
	"github.com/nordframe/frontauth/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const passwordScheme = "password"

func main() {
	mr, err := miniredis.Run()
	if err != nil {
		log.Fatal(err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	backend := newStubPasswordService()
	backend.put(1, "alice", "correct-horse")

	engine, err := frontauth.New().
		WithRedis(rdb).
		WithLoginService(passwordScheme, backend).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		log.Fatal("engine build:", err)
	}
	defer engine.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", loginHandler(engine))
	mux.HandleFunc("POST /logout", logoutHandler(engine))
	mux.Handle("GET /protected", middleware.Resolve(engine)(
		middleware.RequireNormal()(http.HandlerFunc(protectedHandler)),
	))

	fmt.Println("listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", mux))
}

func loginHandler(engine *frontauth.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		ctx := withRequestContext(r)
		current := frontauth.FrontAuthenticationInfo{Info: authinfo.None}

		r = r.WithContext(context.WithValue(r.Context(), credentialsContextKey{}, body))

		lc := &frontauth.LoginContext{
			Mode:          frontauth.ModeOther,
			InitialScheme: passwordScheme,
			CallingScheme: passwordScheme,
			RememberMe:    true,
		}

		outcome, err := engine.Login(ctx, r, lc, current, passwordScheme)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if outcome.Err == nil {
			engine.SetCookies(w, r, outcome.Info)
		}
		if err := engine.BuildResponse(w, lc, outcome); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func logoutHandler(engine *frontauth.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Logout(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}

func protectedHandler(w http.ResponseWriter, r *http.Request) {
	info, _ := middleware.FromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "hello, authenticated user",
		"user_id": info.Info.User().UserID,
	})
}

func withRequestContext(r *http.Request) context.Context {
	ctx := r.Context()
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ctx = frontauth.WithClientIP(ctx, host)
	ctx = frontauth.WithUserAgent(ctx, r.UserAgent())
	return ctx
}

// ---------------------------------------------------------------------------
// Stub password LoginService — in-memory demo backend. Replace with a real
// database-backed implementation.
// ---------------------------------------------------------------------------

type credentialsContextKey struct{}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type storedUser struct {
	userID   uint64
	username string
	passHash [32]byte
}

type stubPasswordService struct {
	byUsername map[string]storedUser
}

func newStubPasswordService() *stubPasswordService {
	return &stubPasswordService{byUsername: make(map[string]storedUser)}
}

func (s *stubPasswordService) put(userID uint64, username, password string) {
	s.byUsername[username] = storedUser{
		userID:   userID,
		username: username,
		passHash: sha256.Sum256([]byte(password)),
	}
}

func (s *stubPasswordService) CreatePayload(r *http.Request, _ string) (any, error) {
	creds, ok := r.Context().Value(credentialsContextKey{}).(credentials)
	if !ok {
		return nil, fmt.Errorf("missing credentials")
	}
	return creds, nil
}

func (s *stubPasswordService) Login(_ context.Context, _ string, payload any, _ bool) (*frontauth.UserLoginResult, error) {
	creds, ok := payload.(credentials)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type")
	}

	user, ok := s.byUsername[creds.Username]
	if !ok {
		return &frontauth.UserLoginResult{LoginFailureCode: 1, LoginFailureReason: "unknown user"}, nil
	}

	want := sha256.Sum256([]byte(creds.Password))
	if subtle.ConstantTimeCompare(want[:], user.passHash[:]) != 1 {
		return &frontauth.UserLoginResult{LoginFailureCode: 2, LoginFailureReason: "bad password"}, nil
	}

	info := frontauth.UserInfo{
		UserID:   user.userID,
		UserName: user.username,
		Schemes:  []frontauth.Scheme{{Name: passwordScheme}},
	}
	return &frontauth.UserLoginResult{UserInfo: &info}, nil
}
