// Package auth signs players in with a wallet signature and issues
// session tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"brawlers/config"
)

// NonceTTL bounds how long a sign-in message stays valid.
const NonceTTL = 5 * time.Minute

var (
	ErrBadAddress   = errors.New("invalid wallet address")
	ErrNoNonce      = errors.New("no pending sign-in for address")
	ErrBadSignature = errors.New("signature does not match address")
	ErrBadToken     = errors.New("invalid token")
)

type pending struct {
	nonce   string
	expires time.Time
}

type Auth struct {
	jwtKey []byte
	issuer string
	ttl    time.Duration
	clk    clock.Clock

	mu     sync.Mutex
	nonces map[string]pending
}

// New builds an Auth from cfg. An empty secret gets a random key, so
// tokens do not survive a restart.
func New(cfg config.AuthConfig, clk clock.Clock) *Auth {
	key := []byte(cfg.Secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
		log.Println("auth: no secret configured, using an ephemeral key")
	}
	if clk == nil {
		clk = clock.New()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Auth{jwtKey: key, issuer: cfg.Issuer, ttl: ttl, clk: clk, nonces: map[string]pending{}}
}

// Message is the text a wallet signs to log in.
func Message(address, nonce string) string {
	return fmt.Sprintf("Sign in to BitBrawlers\n\nAddress: %s\nNonce: %s", address, nonce)
}

// Nonce issues a fresh sign-in message for address, replacing any
// earlier one.
func (a *Auth) Nonce(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrBadAddress
	}
	addr := common.HexToAddress(address).Hex()
	n := uuid.NewString()

	a.mu.Lock()
	a.nonces[addr] = pending{nonce: n, expires: a.clk.Now().Add(NonceTTL)}
	a.mu.Unlock()
	return Message(addr, n), nil
}

// Login checks an EIP-191 personal signature over the pending message
// and returns a session token. The nonce is consumed either way.
func (a *Auth) Login(address, signature string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrBadAddress
	}
	addr := common.HexToAddress(address)

	a.mu.Lock()
	p, ok := a.nonces[addr.Hex()]
	delete(a.nonces, addr.Hex())
	a.mu.Unlock()
	if !ok || a.clk.Now().After(p.expires) {
		return "", ErrNoNonce
	}

	signer, err := Recover(Message(addr.Hex(), p.nonce), signature)
	if err != nil {
		return "", err
	}
	if signer != addr {
		return "", ErrBadSignature
	}
	return a.Issue(addr.Hex())
}

// Recover returns the address that produced a personal_sign signature.
func Recover(msg, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrBadSignature
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(msg)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Issue signs a session token for address.
func (a *Auth) Issue(address string) (string, error) {
	now := a.clk.Now()
	claims := jwt.MapClaims{
		"sub": address,
		"iss": a.issuer,
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(a.jwtKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates tok and returns the address it was issued to.
func (a *Auth) ParseToken(tok string) (string, error) {
	if tok == "" {
		return "", fmt.Errorf("%w: missing", ErrBadToken)
	}
	t, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return a.jwtKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithTimeFunc(a.clk.Now),
	)
	if err != nil || !t.Valid {
		return "", ErrBadToken
	}
	sub, err := t.Claims.GetSubject()
	if err != nil || !common.IsHexAddress(sub) {
		return "", fmt.Errorf("%w: bad subject", ErrBadToken)
	}
	return sub, nil
}

type ctxKey struct{}

// WithAddress stores a signed-in address on ctx.
func WithAddress(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, ctxKey{}, addr)
}

// AddressFrom returns the address RequireAuth stored, or "".
func AddressFrom(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// TokenFrom reads a bearer token from the Authorization header, falling
// back to the token query parameter used by WebSocket clients.
func TokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// RequireAuth protects REST endpoints.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr, err := a.ParseToken(TokenFrom(r))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAddress(r.Context(), addr)))
	})
}

type NonceReq struct {
	Address string `json:"address"`
}
type NonceResp struct {
	Message string `json:"message"`
}

func (a *Auth) HandleNonce(w http.ResponseWriter, r *http.Request) {
	var req NonceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	msg, err := a.Nonce(req.Address)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(NonceResp{Message: msg})
}

type LoginReq struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}
type LoginResp struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

func (a *Auth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	tok, err := a.Login(req.Address, req.Signature)
	if err != nil {
		log.Printf("auth: login %s failed: %v", req.Address, err)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResp{Token: tok, Address: common.HexToAddress(req.Address).Hex()})
}
