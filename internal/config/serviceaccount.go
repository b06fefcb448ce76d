package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

type serviceAccountJSON struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// applyServiceAccountJSON preenche campos vazios a partir do JSON da conta de serviço.
func (f *FirestoreConfig) applyServiceAccountJSON(raw []byte) error {
	var sa serviceAccountJSON
	if err := json.Unmarshal(raw, &sa); err != nil {
		return fmt.Errorf("FIRESTORE_SA_JSON inválido: %w", err)
	}
	if f.ProjectID == "" {
		f.ProjectID = strings.TrimSpace(sa.ProjectID)
	}
	if f.ClientEmail == "" {
		f.ClientEmail = strings.TrimSpace(sa.ClientEmail)
	}
	if f.PrivateKey == "" {
		f.PrivateKey = sa.PrivateKey
	}
	if sa.TokenURI != "" {
		f.TokenURI = sa.TokenURI
	}
	return nil
}
