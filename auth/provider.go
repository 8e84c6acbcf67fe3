// Package auth provides email/password sign-in for the admin panel. The
// Provider owns the credential table and signs session tokens; a Session holds
// one client's signed-in state and notifies listeners when it changes.
package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("auth: invalid email or password")

const tokenIssuer = "folio"

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("folio-dummy-password"), bcrypt.DefaultCost)

// User is a signed-in identity.
type User struct {
	ID    string
	Email string
}

// Credential is the result of a successful sign-in.
type Credential struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// Provider verifies passwords and issues session tokens.
type Provider struct {
	db     *sqlx.DB
	secret []byte
	ttl    time.Duration
}

// NewProvider creates the users table if needed. Tokens are signed with
// secret and expire after ttl.
func NewProvider(db *sqlx.DB, secret []byte, ttl time.Duration) (*Provider, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty token secret")
	}
	p := &Provider{db: db, secret: secret, ttl: ttl}
	if err := p.EnsureSchema(); err != nil {
		return nil, err
	}
	return p, nil
}

// EnsureSchema creates the users table if it does not exist.
func (p *Provider) EnsureSchema() error {
	_, err := p.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`)
	return errors.Wrap(err, "create users table")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword creates the user or replaces its password.
func (p *Provider) SetPassword(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, errors.New("auth: email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.Wrap(err, "hash password")
	}
	id := uuid.NewString()
	_, err = p.db.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT (email) DO UPDATE SET password_hash = excluded.password_hash`,
		id, email, string(hash), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return User{}, errors.Wrapf(err, "save user %s", email)
	}
	if err := p.db.GetContext(ctx, &id, `SELECT id FROM users WHERE email = ?`, email); err != nil {
		return User{}, errors.Wrapf(err, "load user %s", email)
	}
	return User{ID: id, Email: email}, nil
}

// Verify checks the password for email.
func (p *Provider) Verify(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	var row struct {
		ID   string `db:"id"`
		Hash string `db:"password_hash"`
	}
	err := p.db.GetContext(ctx, &row, `SELECT id, password_hash FROM users WHERE email = ?`, email)
	if err == sql.ErrNoRows {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, errors.Wrap(err, "load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(row.Hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return User{ID: row.ID, Email: email}, nil
}

// IssueToken signs a session token for u.
func (p *Provider) IssueToken(u User) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(p.ttl)
	claims := jwt.MapClaims{
		"iss":   tokenIssuer,
		"sub":   u.ID,
		"typ":   "session",
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, exp, nil
}

// ParseToken validates a token issued by IssueToken and returns its user.
func (p *Provider) ParseToken(token string) (User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidCredentials
	}
	if typ, _ := claims["typ"].(string); typ != "session" {
		return User{}, ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return User{}, ErrInvalidCredentials
	}
	return User{ID: sub, Email: email}, nil
}
