package environment

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/knadh/koanf/parsers/hjson"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a record from a .json or .hjson file and validates it.
func Load(path string) (Environment, error) {
	var parser koanf.Parser = kjson.Parser()
	if strings.EqualFold(filepath.Ext(path), ".hjson") {
		parser = hjson.Parser()
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return Environment{}, errors.Wrapf(err, "loading environment from %s", path)
	}
	var env Environment
	if err := k.Unmarshal("", &env); err != nil {
		return Environment{}, errors.Wrap(err, "decoding environment")
	}
	if err := env.Validate(); err != nil {
		return Environment{}, err
	}
	return env, nil
}

// ParseJSON decodes a record previously produced by json.Marshal.
func ParseJSON(data []byte) (Environment, error) {
	var env Environment
	if err := json.Unmarshal(data, &env); err != nil {
		return Environment{}, errors.Wrap(err, "decoding environment json")
	}
	return env, nil
}

// ToYAML encodes the record with the same field names as the JSON form.
func (e Environment) ToYAML() ([]byte, error) {
	return yaml.Marshal(e)
}

// ParseYAML decodes a record produced by ToYAML.
func ParseYAML(data []byte) (Environment, error) {
	var env Environment
	if err := yaml.Unmarshal(data, &env); err != nil {
		return Environment{}, errors.Wrap(err, "decoding environment yaml")
	}
	return env, nil
}
