package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("report-1", "students/report-1.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "report-1", claims.ReportID)
	require.Equal(t, "students/report-1.csv", claims.File)
	require.Equal(t, expiresAt, claims.ExpiresAt)
}

func TestDownloadSignerExpired(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Minute)
	token, _, err := signer.Sign("report-1", "a.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestDownloadSignerTampered(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Sign("report-1", "a.csv")
	require.NoError(t, err)

	other := NewDownloadSigner("other", time.Hour)
	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrTokenSignature)

	_, err = signer.Verify("not-a-token")
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestDownloadSignerRequiresSecret(t *testing.T) {
	_, _, err := NewDownloadSigner("", time.Hour).Sign("report-1", "a.csv")
	require.Error(t, err)
}
