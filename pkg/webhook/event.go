package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EventType identifies what happened to a tenant
type EventType string

const (
	EventConfigUpdated   EventType = "config.updated"
	EventCustomerDeleted EventType = "customer.deleted"
	EventUserProvisioned EventType = "user.provisioned"
)

// Event is the payload delivered to a tenant's webhook URL
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Tenant    string                 `json:"tenant"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Sign computes the HMAC-SHA256 signature sent in X-Canopy-Signature
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature lets receivers check that a payload came from this service
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
