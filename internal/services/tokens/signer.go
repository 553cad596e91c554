package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

const issuer = "vidgrab"

// EntryClaims binds a rendered menu entry to its URL and format.
type EntryClaims struct {
	jwt.RegisteredClaims
	URL        string `json:"url"`
	FormatID   string `json:"format_id"`
	Ext        string `json:"ext,omitempty"`
	Label      string `json:"label,omitempty"`
	AudioAsMP3 bool   `json:"audio_as_mp3,omitempty"`
}

// Signer issues and verifies entry tokens so the download endpoint only
// relays formats this server rendered.
type Signer struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{
		secretKey: []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Sign returns an HS256 token for entry.
func (s *Signer) Sign(entry models.MenuEntry) (string, error) {
	now := s.now()
	claims := EntryClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		URL:        entry.URL,
		FormatID:   entry.FormatID,
		Ext:        entry.Ext,
		Label:      entry.Label,
		AudioAsMP3: entry.AudioAsMP3,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign entry token: %w", err)
	}
	return signed, nil
}

// SignEntries fills in Token on every entry.
func (s *Signer) SignEntries(entries []models.MenuEntry) error {
	for i := range entries {
		token, err := s.Sign(entries[i])
		if err != nil {
			return err
		}
		entries[i].Token = token
	}
	return nil
}

// Parse verifies a token and returns the entry it was issued for.
func (s *Signer) Parse(tokenString string) (models.MenuEntry, error) {
	claims := &EntryClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.MenuEntry{}, fmt.Errorf("failed to parse entry token: %w", err)
	}
	if !token.Valid {
		return models.MenuEntry{}, errors.New("invalid entry token")
	}
	if claims.URL == "" || claims.FormatID == "" {
		return models.MenuEntry{}, errors.New("entry token is missing url or format_id")
	}

	return models.MenuEntry{
		Label:      claims.Label,
		URL:        claims.URL,
		FormatID:   claims.FormatID,
		Ext:        claims.Ext,
		AudioAsMP3: claims.AudioAsMP3,
		Token:      tokenString,
	}, nil
}
