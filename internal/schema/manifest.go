package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

// manifestSchema constrains migration manifests before they are decoded.
// Versions must be non-negative integers and every step must carry SQL.
const manifestSchema = `
#Migration: {
	from: int & >=0
	to:   int & >0
	sql:  string & !=""
}
migrations: [...#Migration]
`

type manifest struct {
	Migrations []Migration `yaml:"migrations"`
}

// LoadManifest reads a YAML migration manifest, validates it against the
// manifest schema, and returns the migration chain. Structural errors
// surface with file positions; chain errors (gaps, reversed steps) come
// from Steps.Validate.
func LoadManifest(path string) (Steps, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	if err := ValidateManifest(path, data); err != nil {
		return nil, err
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	steps := Steps(m.Migrations)
	if err := steps.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

// ValidateManifest checks raw manifest bytes against the manifest schema
// without decoding them into a chain. The filename is used for positions
// in error messages.
func ValidateManifest(filename string, data []byte) error {
	ctx := cuecontext.New()

	constraint := ctx.CompileString(manifestSchema)
	if err := constraint.Err(); err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}

	unified := constraint.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid manifest:\n%s", cueerrors.Details(err, nil))
	}
	return nil
}
