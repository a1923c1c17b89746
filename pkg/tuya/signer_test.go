package tuya

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256 of the empty byte string
const emptyBodyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestStringToSign_EmptyBody(t *testing.T) {
	got := StringToSign("GET", "/v2.0/cloud/thing/123/report-logs", nil)
	want := "GET\n" + emptyBodyHash + "\n\n/v2.0/cloud/thing/123/report-logs"
	assert.Equal(t, want, got)
}

func TestStringToSign_MethodUppercasedAndBodyHashed(t *testing.T) {
	body := []byte(`{"k":"v"}`)
	bodyHash := sha256.Sum256(body)

	got := StringToSign("post", "/v1.0/token", body)
	want := "POST\n" + hex.EncodeToString(bodyHash[:]) + "\n\n/v1.0/token"
	assert.Equal(t, want, got)

	// empty body hashes the empty string, not a placeholder
	assert.NotEqual(t, got, StringToSign("post", "/v1.0/token", nil))
}

func TestSign_UppercaseHexHMAC(t *testing.T) {
	sig := Sign("GET", "/v2.0/cloud/thing/123/report-logs", nil, "s3cr3t")

	mac := hmac.New(sha256.New, []byte("s3cr3t"))
	mac.Write([]byte("GET\n" + emptyBodyHash + "\n\n/v2.0/cloud/thing/123/report-logs"))
	want := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	assert.Equal(t, want, sig)
	require.Len(t, sig, 64)
	assert.Equal(t, strings.ToUpper(sig), sig)

	// deterministic for fixed inputs
	assert.Equal(t, sig, Sign("GET", "/v2.0/cloud/thing/123/report-logs", nil, "s3cr3t"))
	// keyed by the secret
	assert.NotEqual(t, sig, Sign("GET", "/v2.0/cloud/thing/123/report-logs", nil, "other"))
}

func TestSignRequest_Headers(t *testing.T) {
	headers := SignRequest("client123", "s3cr3t", "GET", "/v2.0/cloud/thing/123/report-logs", nil, 1700000000000)

	assert.Equal(t, "client123", headers["client_id"])
	assert.Equal(t, "1700000000000", headers["t"])
	assert.Equal(t, SignMethod, headers["sign_method"])
	assert.Equal(t, Sign("GET", "/v2.0/cloud/thing/123/report-logs", nil, "s3cr3t"), headers["sign"])
}
