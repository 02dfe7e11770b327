package auth_test

import (
	"aggregat4/coffeeshop/internal/auth"
	"aggregat4/coffeeshop/pkg/crypto"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	testIssuer   = "https://tenant.auth0.com/"
	testAudience = "coffee_shop"
	testKid      = "test-key"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func signingKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

type jwksServer struct {
	*httptest.Server
	hits atomic.Int32
	mu   sync.Mutex
	set  jose.JSONWebKeySet
}

func newJwksServer(t *testing.T, set jose.JSONWebKeySet) *jwksServer {
	t.Helper()
	s := &jwksServer{set: set}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		defer s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.set)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) replace(set jose.JSONWebKeySet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = set
}

func claims(permissions []string, expiresIn time.Duration) *auth.Claims {
	now := time.Now()
	return &auth.Claims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "auth0|barista",
			Audience:  jwt.ClaimStrings{testAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func sign(t *testing.T, kid string, c jwt.Claims) string {
	t.Helper()
	token, err := crypto.SignRS256(signingKey(t), kid, c)
	require.NoError(t, err)
	return token
}

func newVerifier(t *testing.T) (*auth.Verifier, *jwksServer) {
	t.Helper()
	server := newJwksServer(t, crypto.PublicKeySet(&signingKey(t).PublicKey, testKid))
	keys := auth.NewKeySet(server.URL, time.Hour)
	return auth.NewVerifier(keys, testIssuer, testAudience), server
}

func requireAuthError(t *testing.T, err error, code string) *auth.AuthError {
	t.Helper()
	var authErr *auth.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, code, authErr.Code)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	return authErr
}

func TestTokenFromHeader(t *testing.T) {
	token, err := auth.TokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = auth.TokenFromHeader("")
	authErr := requireAuthError(t, err, auth.CodeHeaderMissing)
	assert.Equal(t, "Authorization not in header", authErr.Message)

	for _, header := range []string{"Token abc", "bearer abc", "Bearer a b", "xBearer abc", "Bearer abc Bearer def"} {
		_, err = auth.TokenFromHeader(header)
		authErr = requireAuthError(t, err, auth.CodeInvalidAuthorization)
		assert.Equal(t, "Authorization header is invalid. Bearer token not found", authErr.Message, header)
	}

	_, err = auth.TokenFromHeader("Bearer ")
	authErr = requireAuthError(t, err, auth.CodeInvalidAuthorization)
	assert.Equal(t, "Authorization header is invalid. Bearer token is empty", authErr.Message)
}

func TestVerifyValidToken(t *testing.T) {
	verifier, _ := newVerifier(t)

	verified, err := verifier.Verify(context.Background(), sign(t, testKid, claims([]string{"get:drinks-detail"}, time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "auth0|barista", verified.Subject)
	assert.Equal(t, []string{"get:drinks-detail"}, verified.Permissions)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	verifier, _ := newVerifier(t)
	ctx := context.Background()

	_, err := verifier.Verify(ctx, "not-a-token")
	requireAuthError(t, err, auth.CodeInvalidHeader)

	_, err = verifier.Verify(ctx, sign(t, "", claims(nil, time.Hour)))
	authErr := requireAuthError(t, err, auth.CodeInvalidHeader)
	assert.Equal(t, "Authorization malformed.", authErr.Message)

	_, err = verifier.Verify(ctx, sign(t, "other-key", claims(nil, time.Hour)))
	authErr = requireAuthError(t, err, auth.CodeInvalidHeader)
	assert.Equal(t, "Unable to find the appropriate key.", authErr.Message)

	_, err = verifier.Verify(ctx, sign(t, testKid, claims(nil, -time.Minute)))
	requireAuthError(t, err, auth.CodeTokenExpired)

	wrongAudience := claims(nil, time.Hour)
	wrongAudience.Audience = jwt.ClaimStrings{"someone_else"}
	_, err = verifier.Verify(ctx, sign(t, testKid, wrongAudience))
	requireAuthError(t, err, auth.CodeInvalidClaims)

	wrongIssuer := claims(nil, time.Hour)
	wrongIssuer.Issuer = "https://evil.example.com/"
	_, err = verifier.Verify(ctx, sign(t, testKid, wrongIssuer))
	requireAuthError(t, err, auth.CodeInvalidClaims)

	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, claims(nil, time.Hour))
	hmac.Header["kid"] = testKid
	signed, err := hmac.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = verifier.Verify(ctx, signed)
	authErr = requireAuthError(t, err, auth.CodeInvalidHeader)
	assert.Equal(t, "Unable to parse authentication token.", authErr.Message)
}

func TestVerifyReportsUnreachableKeySet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	verifier := auth.NewVerifier(auth.NewKeySet(server.URL, time.Hour), testIssuer, testAudience)

	_, err := verifier.Verify(context.Background(), sign(t, testKid, claims(nil, time.Hour)))
	require.Error(t, err)
	var authErr *auth.AuthError
	assert.False(t, errors.As(err, &authErr))
}

func TestCheckPermissions(t *testing.T) {
	err := auth.CheckPermissions("post:drinks", &auth.Claims{})
	authErr := requireAuthError(t, err, auth.CodeAccessDenied)
	assert.Equal(t, "Any permissions not in token", authErr.Message)

	err = auth.CheckPermissions("post:drinks", &auth.Claims{Permissions: []string{"get:drinks-detail"}})
	authErr = requireAuthError(t, err, auth.CodeAccessDenied)
	assert.Equal(t, "Permission not found this action", authErr.Message)

	assert.NoError(t, auth.CheckPermissions("post:drinks", &auth.Claims{Permissions: []string{"get:drinks-detail", "post:drinks"}}))
}

func TestKeySetCachesWithinTtl(t *testing.T) {
	server := newJwksServer(t, crypto.PublicKeySet(&signingKey(t).PublicKey, testKid))
	keys := auth.NewKeySet(server.URL, time.Hour)

	for i := 0; i < 5; i++ {
		key, err := keys.Key(context.Background(), testKid)
		require.NoError(t, err)
		assert.NotNil(t, key)
	}
	assert.Equal(t, int32(1), server.hits.Load())
}

func TestKeySetRefetchesAfterTtl(t *testing.T) {
	server := newJwksServer(t, crypto.PublicKeySet(&signingKey(t).PublicKey, testKid))
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	keys := auth.NewKeySet(server.URL, time.Minute, auth.WithClock(clock))

	_, err := keys.Key(context.Background(), testKid)
	require.NoError(t, err)
	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	_, err = keys.Key(context.Background(), testKid)
	require.NoError(t, err)
	assert.Equal(t, int32(2), server.hits.Load())
}

func TestKeySetPicksUpRotatedKey(t *testing.T) {
	server := newJwksServer(t, crypto.PublicKeySet(&signingKey(t).PublicKey, testKid))
	keys := auth.NewKeySet(server.URL, time.Hour, auth.WithMinRefreshInterval(0))

	_, err := keys.Key(context.Background(), testKid)
	require.NoError(t, err)

	server.replace(crypto.PublicKeySet(&signingKey(t).PublicKey, "rotated"))
	key, err := keys.Key(context.Background(), "rotated")
	require.NoError(t, err)
	assert.NotNil(t, key)
	assert.Equal(t, int32(2), server.hits.Load())
}

func TestKeySetLimitsRefetchForUnknownKeys(t *testing.T) {
	server := newJwksServer(t, crypto.PublicKeySet(&signingKey(t).PublicKey, testKid))
	keys := auth.NewKeySet(server.URL, time.Hour, auth.WithMinRefreshInterval(time.Hour))

	_, err := keys.Key(context.Background(), testKid)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = keys.Key(context.Background(), "unknown")
		assert.ErrorIs(t, err, auth.ErrKeyNotFound)
	}
	assert.Equal(t, int32(1), server.hits.Load())
}

func TestKeySetConcurrentFirstUse(t *testing.T) {
	server := newJwksServer(t, crypto.PublicKeySet(&signingKey(t).PublicKey, testKid))
	keys := auth.NewKeySet(server.URL, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := keys.Key(context.Background(), testKid)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, server.hits.Load(), int32(16))
	assert.GreaterOrEqual(t, server.hits.Load(), int32(1))
}

func TestKeySetSharedFetchOutlivesImpatientCaller(t *testing.T) {
	var hits atomic.Int32
	set := crypto.PublicKeySet(&signingKey(t).PublicKey, testKid)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer server.Close()
	keys := auth.NewKeySet(server.URL, time.Hour)

	impatient := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := keys.Key(ctx, testKid)
		impatient <- err
	}()
	time.Sleep(10 * time.Millisecond)

	key, err := keys.Key(context.Background(), testKid)
	require.NoError(t, err)
	assert.NotNil(t, key)
	assert.ErrorIs(t, <-impatient, context.DeadlineExceeded)
	assert.Equal(t, int32(1), hits.Load())
}

func writeKeySet(t *testing.T, path string, kid string) {
	t.Helper()
	data, err := json.Marshal(crypto.PublicKeySet(&signingKey(t).PublicKey, kid))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestKeySetFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwks.json")
	writeKeySet(t, path, testKid)

	keys := auth.NewKeySet("file://"+path, time.Hour)
	verifier := auth.NewVerifier(keys, testIssuer, testAudience)
	_, err := verifier.Verify(context.Background(), sign(t, testKid, claims([]string{"post:drinks"}, time.Hour)))
	assert.NoError(t, err)
}

func TestRefreshJobPicksUpRotationAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "jwks.json")
	writeKeySet(t, path, testKid)
	keys := auth.NewKeySet("file://"+path, time.Hour, auth.WithMinRefreshInterval(time.Hour))
	_, err := keys.Key(ctx, testKid)
	require.NoError(t, err)

	writeKeySet(t, path, "rotated")
	_, err = keys.Key(ctx, "rotated")
	require.ErrorIs(t, err, auth.ErrKeyNotFound)

	job := auth.NewRefreshJob(keys, 10*time.Millisecond)
	job.Start()
	require.Eventually(t, func() bool {
		_, err := keys.Key(ctx, "rotated")
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
	job.Stop()
	job.Stop()
}
