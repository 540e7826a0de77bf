package v1

import (
	"context"
	"errors"
	"net/http"
)

type AuthEndpoint struct {
	transport *Transport
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login exchanges credentials for a token and uses it for later calls.
func (this *AuthEndpoint) Login(ctx context.Context, username, password string) (string, error) {
	var result loginResponse
	payload := map[string]string{"username": username, "password": password}
	if err := this.transport.Do(ctx, http.MethodPost, "/api/auth/login", nil, payload, &result); err != nil {
		return "", err
	}
	if !result.Success || result.Token == "" {
		return "", errors.New("login was not accepted")
	}
	this.transport.AuthToken = result.Token
	return result.Token, nil
}
