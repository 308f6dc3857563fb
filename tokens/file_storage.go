package tokens

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const defaultCredentialsFile = "credentials.json"

// FileStorage implements Storage over a JSON file, the client's durable
// credential persistence. Every operation re-reads the file so multiple
// processes see each other's writes on their next call.
type FileStorage struct {
	path string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a FileStorage at path. An empty path defaults to
// ~/.hackboard/credentials.json.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "[NewFileStorage] user home directory")
		}
		dir := filepath.Join(home, ".hackboard")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "[NewFileStorage] create config directory")
		}
		path = filepath.Join(dir, defaultCredentialsFile)
	}
	return &FileStorage{path: path}, nil
}

// Path returns the backing file location, for user messaging.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Get(key string) (string, error) {
	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (f *FileStorage) Set(key, value string) error {
	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStorage) Delete(key string) error {
	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

func (f *FileStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrap(err, "read credentials file")
	}
	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "unmarshal credentials file")
	}
	return values, nil
}

func (f *FileStorage) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal credentials file")
	}
	return os.WriteFile(f.path, data, 0o600)
}
