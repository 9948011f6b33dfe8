package gateway

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenDuration is how long an issued session token stays valid.
const DefaultTokenDuration = 24 * time.Hour

// DefaultPassword is the password of the built-in development accounts.
const DefaultPassword = "123456"

// User is an account as the API shows it.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is what login, register, and the current-user endpoint return.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type account struct {
	User
	passwordHash []byte
}

// Claims are the custom claims of a session token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthOptions configures an Auth.
type AuthOptions struct {
	Secret        string
	Issuer        string
	TokenDuration time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Clock      func() time.Time
}

// Auth keeps the user registry and issues signed session tokens.
type Auth struct {
	secret   []byte
	issuer   string
	duration time.Duration
	cost     int
	clock    func() time.Time

	mu       sync.RWMutex
	accounts []account
}

// NewAuth creates an empty registry.
func NewAuth(opts AuthOptions) (*Auth, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	issuer := opts.Issuer
	if issuer == "" {
		issuer = "todopro"
	}
	duration := opts.TokenDuration
	if duration <= 0 {
		duration = DefaultTokenDuration
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Auth{
		secret:   []byte(opts.Secret),
		issuer:   issuer,
		duration: duration,
		cost:     cost,
		clock:    clock,
	}, nil
}

// SeedUsers adds the development accounts, all with DefaultPassword.
func (a *Auth) SeedUsers() error {
	for _, user := range []User{
		{Name: "Admin User", Email: "admin@example.com"},
		{Name: "John Doe", Email: "john.doe@example.com"},
	} {
		if _, err := a.Register(user.Name, user.Email, DefaultPassword); err != nil && !errors.Is(err, ErrEmailTaken) {
			return err
		}
	}
	return nil
}

// Register creates an account and returns a session for it.
func (a *Auth) Register(name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return Session{}, errors.New("Missing required fields Name, Email & Password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	a.mu.Lock()
	if a.findLocked(email) >= 0 {
		a.mu.Unlock()
		return Session{}, ErrEmailTaken
	}
	user := User{ID: strconv.Itoa(len(a.accounts) + 1), Name: name, Email: email}
	a.accounts = append(a.accounts, account{User: user, passwordHash: hash})
	a.mu.Unlock()

	return a.session(user)
}

// Login checks a password and returns a new session.
func (a *Auth) Login(email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, errors.New("Email and password are required")
	}
	a.mu.RLock()
	i := a.findLocked(email)
	var found account
	if i >= 0 {
		found = a.accounts[i]
	}
	a.mu.RUnlock()

	if i < 0 || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return a.session(found.User)
}

// Authenticate validates an Authorization header value and returns its user.
func (a *Auth) Authenticate(header string) (User, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return User{}, ErrUnauthorized
	}
	if scheme, rest, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "Bearer") {
		raw = strings.TrimSpace(rest)
	}
	claims, err := a.validate(raw)
	if err != nil {
		return User{}, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	i := a.findLocked(claims.Email)
	if i < 0 || a.accounts[i].ID != claims.UserID {
		return User{}, ErrUnauthorized
	}
	return a.accounts[i].User, nil
}

// Refresh returns a fresh session for an authenticated user.
func (a *Auth) Refresh(user User) (Session, error) {
	return a.session(user)
}

func (a *Auth) session(user User) (Session, error) {
	now := a.clock()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{User: user, Token: "Bearer " + signed}, nil
}

func (a *Auth) validate(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.clock), jwt.WithIssuer(a.issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (a *Auth) findLocked(email string) int {
	for i, acct := range a.accounts {
		if acct.Email == email {
			return i
		}
	}
	return -1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
