package credentials

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

type accessFunc func(ctx context.Context, name string) ([]byte, error)

// SecretManager resolves credentials stored in Google Cloud Secret Manager.
type SecretManager struct {
	version string
	access  accessFunc
	close   func() error
}

// NewSecretManager opens a Secret Manager client. credentialsFile may be
// empty to use application default credentials. version defaults to "latest".
func NewSecretManager(ctx context.Context, credentialsFile, version string) (*SecretManager, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secret manager client: %w", err)
	}

	access := func(ctx context.Context, name string) ([]byte, error) {
		resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return nil, err
		}
		return resp.GetPayload().GetData(), nil
	}
	return newSecretManager(access, version, client.Close), nil
}

func newSecretManager(access accessFunc, version string, closeFn func() error) *SecretManager {
	if version == "" {
		version = "latest"
	}
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return &SecretManager{version: version, access: access, close: closeFn}
}

// SecretName is the fully qualified secret version name.
func (s *SecretManager) SecretName(project, secret string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, secret, s.version)
}

func (s *SecretManager) Resolve(ctx context.Context, project, secret string) (Credentials, error) {
	if project == "" || secret == "" {
		return Credentials{}, fmt.Errorf("secret manager: project and secret are required")
	}
	name := s.SecretName(project, secret)

	payload, err := s.access(ctx, name)
	if err != nil {
		return Credentials{}, fmt.Errorf("access %s: %w", name, err)
	}
	c, err := Parse(payload)
	if err != nil {
		return Credentials{}, fmt.Errorf("secret %s: %w", name, err)
	}
	return c, nil
}

func (s *SecretManager) Close() error { return s.close() }
