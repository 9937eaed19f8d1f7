package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Properties is an event's property map with the document's key order
// preserved. encoding/json maps lose ordering; both the reporter and the
// review publisher list property names in the order the API emitted them.
type Properties struct {
	names  []string
	values map[string]json.RawMessage
}

// Names returns the property names in document order.
func (p Properties) Names() []string {
	return p.names
}

func (p Properties) Len() int {
	return len(p.names)
}

// Value returns the raw JSON value for a property name.
func (p Properties) Value(name string) (json.RawMessage, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = Properties{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}

	out := Properties{values: make(map[string]json.RawMessage)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("properties: unexpected key token %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if _, seen := out.values[key]; !seen {
			out.names = append(out.names, key)
		}
		out.values[key] = raw
	}
	*p = out
	return nil
}

func (p Properties) MarshalJSON() ([]byte, error) {
	if len(p.names) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(p.values[name])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
