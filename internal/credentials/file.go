package credentials

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File reads secrets from <Dir>/<project>/<secret>.json.
type File struct {
	Dir string
}

func (f File) Resolve(_ context.Context, project, secret string) (Credentials, error) {
	if project == "" || secret == "" {
		return Credentials{}, fmt.Errorf("file secret: project and secret are required")
	}
	if filepath.Base(project) != project || filepath.Base(secret) != secret {
		return Credentials{}, fmt.Errorf("file secret %s/%s: invalid name", project, secret)
	}

	path := filepath.Join(f.Dir, project, secret+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read secret %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return Credentials{}, fmt.Errorf("secret %s: %w", path, err)
	}
	return c, nil
}
