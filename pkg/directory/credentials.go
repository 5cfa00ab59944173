package directory

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	admin_directory_v1 "google.golang.org/api/admin/directory/v1"
)

type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// JWTConfig builds a delegated JWT configuration from a service account key.
// The private key may contain literal `\n` escape sequences, which happens
// when the key file is passed through a single-line environment variable.
func JWTConfig(credentialsJSON, delegatedUser string) (*jwt.Config, error) {
	if credentialsJSON == "" {
		return nil, fmt.Errorf("missing required configuration: RECEIPTS_GOOGLE_CREDENTIALS_JSON")
	}

	if delegatedUser == "" {
		return nil, fmt.Errorf("missing required configuration: RECEIPTS_GOOGLE_DELEGATED_USER")
	}

	key := &serviceAccountKey{}
	err := json.Unmarshal([]byte(credentialsJSON), key)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}

	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("google credentials are missing client_email or private_key")
	}

	cf := &jwt.Config{
		Email:      key.ClientEmail,
		PrivateKey: []byte(strings.ReplaceAll(key.PrivateKey, `\n`, "\n")),
		Subject:    delegatedUser,
		TokenURL:   key.TokenURI,
		Scopes: []string{
			admin_directory_v1.AdminDirectoryUserReadonlyScope,
			admin_directory_v1.AdminDirectoryGroupReadonlyScope,
			admin_directory_v1.AdminDirectoryGroupMemberReadonlyScope,
		},
	}

	if cf.TokenURL == "" {
		cf.TokenURL = google.JWTTokenURL
	}

	return cf, nil
}
