// Package firebase persists user snapshots in Firebase: the Realtime Database
// at users/<uid>/data, where the web client keeps them, or a Firestore
// collection with one document per user. It also verifies Firebase ID
// tokens so callers can bind a Store to an authenticated user.
package firebase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/monodeaf/notemode/pkg/core"
)

// DefaultCollection is the Firestore collection holding user snapshots.
const DefaultCollection = "users"

// ErrInvalidUserID is returned for ids that are not valid database keys.
var ErrInvalidUserID = errors.New("invalid user id")

// Config holds the settings shared by the Firebase backends.
type Config struct {
	ProjectID   string
	DatabaseURL string // Realtime Database URL, e.g. https://<project>.firebaseio.com
	// CredentialsFile is a service account key path. When it and
	// CredentialsJSONBase64 are empty, Application Default Credentials apply.
	CredentialsFile       string
	CredentialsJSONBase64 string
	Collection            string // Firestore only; defaults to DefaultCollection
	ReadOnly              bool
	Logger                *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	return c
}

// ClientOptions resolves the credential option. A nil slice means ADC.
func (c Config) ClientOptions() ([]option.ClientOption, error) {
	switch {
	case c.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}, nil
	case c.CredentialsJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(c.CredentialsJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("firebase: credentials are not valid base64: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	}
	return nil, nil
}

// NewApp initializes the Firebase Admin SDK from cfg.
func NewApp(ctx context.Context, cfg Config) (*firebase.App, error) {
	cfg = cfg.withDefaults()

	opts, err := cfg.ClientOptions()
	if err != nil {
		return nil, err
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" || cfg.DatabaseURL != "" {
		appConfig = &firebase.Config{
			ProjectID:   cfg.ProjectID,
			DatabaseURL: cfg.DatabaseURL,
		}
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	cfg.Logger.Debug("firebase app initialized",
		"project", cfg.ProjectID,
		"adc", len(opts) == 0,
	)
	return app, nil
}

// validateKey rejects ids that would escape or break a database path.
func validateKey(userID string) error {
	if userID == "" {
		return core.ErrNoUser
	}
	if strings.ContainsAny(userID, "/.#$[]") {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return nil
}
