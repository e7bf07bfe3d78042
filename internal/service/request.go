package service

import (
	"encoding/json"

	"authn-simple/internal/domain"
)

type credentialPayload struct {
	Credentials []map[string]json.RawMessage `json:"credentials"`
	IP          json.RawMessage              `json:"ip"`
}

// ParseCredentials extracts username, password and ip from a login payload of
// the form {"credentials":[{"username":"..."},{"password":"..."}],"ip":"..."}.
// The first username and the first password win. Fields that are missing or
// are not strings stay nil; an undecodable payload yields an empty request.
func ParseCredentials(payload string) domain.CredentialRequest {
	var req domain.CredentialRequest

	var body credentialPayload
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return req
	}

	var seenUsername, seenPassword bool
	for _, credential := range body.Credentials {
		if raw, ok := credential["username"]; ok {
			if !seenUsername {
				req.Username = rawString(raw)
				seenUsername = true
			}
		} else if raw, ok := credential["password"]; ok {
			if !seenPassword {
				req.Password = rawString(raw)
				seenPassword = true
			}
		}
	}
	req.IP = rawString(body.IP)

	return req
}

func rawString(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
