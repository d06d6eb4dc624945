package config

import "fmt"

// UnmarshalTOML implements toml.Unmarshaler. A provider attribute is either
// a literal value or the `{ secret = "NAME" }` sentinel — the latter decodes
// to a single-key map whose only key is "secret".
func (a *Attr) UnmarshalTOML(value any) error {
	if m, ok := value.(map[string]any); ok {
		if len(m) == 1 {
			if name, ok := m["secret"].(string); ok {
				a.Ref = &Ref{Secret: name}
				return nil
			}
		}
	}
	a.Literal = value
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler. A provider declaration is a
// table with a required "type" key; every other key is a free-form attribute.
func (p *ProviderDecl) UnmarshalTOML(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("provider declaration must be a table, got %T", value)
	}

	p.Attrs = make(map[string]Attr, len(m))
	for k, v := range m {
		if k == "type" {
			typ, ok := v.(string)
			if !ok {
				return fmt.Errorf("provider \"type\" must be a string, got %T", v)
			}
			p.Type = typ
			continue
		}

		var attr Attr
		if err := attr.UnmarshalTOML(v); err != nil {
			return err
		}
		p.Attrs[k] = attr
	}

	if p.Type == "" {
		return fmt.Errorf("provider declaration missing required \"type\"")
	}

	return nil
}
