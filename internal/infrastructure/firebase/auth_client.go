package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyToken checks an ID token and returns the caller's UID and custom
// claims. The "seller" claim decides which participant type the caller
// acts as.
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, map[string]interface{}, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", nil, err
	}

	return result.UID, result.Claims, nil
}
