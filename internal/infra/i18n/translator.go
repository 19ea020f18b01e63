package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Message keys every locale must define.
const (
	KeyGreeting        = "greeting"
	KeyProcessing      = "processing"
	KeyFailure         = "failure"
	KeyNutritionPrompt = "nutrition_prompt"
)

var requiredKeys = []string{KeyGreeting, KeyProcessing, KeyFailure, KeyNutritionPrompt}

type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	t.lang = langCode
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// Validate reports the first required key missing from the catalogue.
func (t *Translator) Validate() error {
	for _, k := range requiredKeys {
		if t.translations[k] == "" {
			return fmt.Errorf("locale %q: missing key %q", t.lang, k)
		}
	}
	return nil
}

func (t *Translator) Lang() string { return t.lang }

// T returns the message for key, formatted with args. Unknown keys are
// returned as-is.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
