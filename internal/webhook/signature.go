// internal/webhook/signature.go
package webhook

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/base64"
    "encoding/hex"
    "strings"

    "github.com/unclebandit/outreach-backend/internal/config"
)

// SecretConfigured reports whether a real webhook secret is in place. While
// the secret is empty or still the placeholder, Verify accepts everything
// and the caller is expected to log a loud warning.
func SecretConfigured(secret string) bool {
    return secret != "" && secret != config.WebhookSecretPlaceholder
}

// Verify checks that rawBody was signed by the provider using the shared
// secret. The header is a comma-separated set of key=value tokens
// (t/timestamp and s/v1/signature); a header with no structured signature
// token is treated as the raw signature itself. Signatures decode as hex
// first, then base64. When a timestamp token is present the signed payload
// is "{timestamp}.{body}". Comparison is constant-time.
func Verify(rawBody []byte, signatureHeader, secret string) bool {
    if !SecretConfigured(secret) {
        return true
    }

    if signatureHeader == "" {
        return false
    }

    var timestamp, signatureValue string
    for _, part := range strings.Split(signatureHeader, ",") {
        part = strings.TrimSpace(part)
        if part == "" {
            continue
        }
        key, value, found := strings.Cut(part, "=")
        if !found {
            continue
        }
        key = strings.ToLower(strings.TrimSpace(key))
        value = strings.TrimSpace(value)
        switch key {
        case "t", "timestamp":
            timestamp = value
        case "s", "v1", "signature":
            signatureValue = value
        }
    }

    if signatureValue == "" {
        signatureValue = strings.TrimSpace(signatureHeader)
    }

    decoded := decodeSignature(signatureValue)
    if decoded == nil {
        return false
    }

    payload := rawBody
    if timestamp != "" {
        payload = append([]byte(timestamp+"."), rawBody...)
    }

    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write(payload)
    expected := mac.Sum(nil)

    return hmac.Equal(decoded, expected)
}

func decodeSignature(signature string) []byte {
    signature = strings.TrimSpace(signature)

    if decoded, err := hex.DecodeString(signature); err == nil {
        return decoded
    }
    if decoded, err := base64.StdEncoding.DecodeString(signature); err == nil {
        return decoded
    }
    return nil
}
