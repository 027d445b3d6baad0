package repository

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// authenticatedURL embeds the access token into an https clone URL, as in
// https://<token>@github.com/org/repo.git. URLs with other schemes and
// empty tokens are passed through unchanged.
func authenticatedURL(cloneURL string, auth Auth) (string, error) {
	if auth.Token == "" || !strings.HasPrefix(cloneURL, "https://") {
		return cloneURL, nil
	}

	u, err := url.Parse(cloneURL)
	if err != nil {
		return "", fmt.Errorf("unable to parse clone url '%s' err:%w", cloneURL, err)
	}

	if auth.Username != "" {
		u.User = url.UserPassword(auth.Username, auth.Token)
	} else {
		u.User = url.User(auth.Token)
	}
	return u.String(), nil
}

// writeMirrorMarker records that the clone at dir was created with
// --mirror. Mirror clones are bare so the marker does not pollute any
// working tree.
func writeMirrorMarker(dir string) error {
	if err := os.WriteFile(filepath.Join(dir, markerFile), []byte("true\n"), 0644); err != nil {
		return fmt.Errorf("unable to write mirror marker err:%w", err)
	}
	return nil
}

func hasMirrorMarker(dir string) (bool, error) {
	_, err := os.Stat(filepath.Join(dir, markerFile))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	}
	return false, fmt.Errorf("unable to check mirror marker err:%w", err)
}
