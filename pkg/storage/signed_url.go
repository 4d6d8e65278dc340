package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenMalformed = errors.New("malformed download token")
	ErrTokenSignature = errors.New("invalid download token signature")
	ErrTokenExpired   = errors.New("download token expired")
)

// DownloadClaims is the metadata carried by a download token.
type DownloadClaims struct {
	ReportID  string
	File      string
	ExpiresAt time.Time
}

// DownloadSigner issues HMAC-signed, expiring download tokens for report files.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDownloadSigner constructs a signer with the provided secret and TTL.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token of the form reportID.expiry.file.signature.
func (s *DownloadSigner) Sign(reportID, file string) (string, time.Time, error) {
	if reportID == "" || file == "" {
		return "", time.Time{}, fmt.Errorf("report id and file required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedFile := base64.RawURLEncoding.EncodeToString([]byte(file))
	signature := s.sign(reportID, expiry, encodedFile)
	return strings.Join([]string{reportID, expiry, encodedFile, signature}, "."), expiresAt, nil
}

// Verify checks the signature and expiry of token.
func (s *DownloadSigner) Verify(token string) (*DownloadClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, ErrTokenMalformed
	}
	reportID, expiry, encodedFile, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(reportID, expiry, encodedFile)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrTokenSignature
	}
	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	file, err := base64.RawURLEncoding.DecodeString(encodedFile)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	claims := &DownloadClaims{ReportID: reportID, File: string(file), ExpiresAt: time.Unix(unix, 0).UTC()}
	if s.now().After(claims.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

func (s *DownloadSigner) sign(parts ...string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
