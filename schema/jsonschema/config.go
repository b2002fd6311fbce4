package jsonschema

// Draft is the JSON Schema dialect emitted by the generator.
const Draft = "https://json-schema.org/draft/2020-12/schema"

type generatorConfig struct {
	id          string
	title       string
	description string
	required    bool
	strictTypes bool
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		title:    "Design Tokens",
		required: true,
	}
}

// GeneratorOption configures the generator.
type GeneratorOption func(*generatorConfig)

// WithID sets the $id of the generated schema.
func WithID(id string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.id = id
	}
}

// WithTitle overrides the schema title. Empty strings retain the default.
func WithTitle(title string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.title = title
		}
	}
}

// WithDescription sets the schema description.
func WithDescription(description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.description = description
	}
}

// WithOptionalPaths stops listing every existing group entry as required.
func WithOptionalPaths() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.required = false
	}
}

// WithStrictTypes requires $type on every token and pins it to the type the
// token currently declares.
func WithStrictTypes() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.strictTypes = true
	}
}
